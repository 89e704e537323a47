package opening_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fskit/internal/fserrors"
	"github.com/temirov/fskit/internal/opening"
)

type intentFlags struct {
	create    bool
	truncate  bool
	append    bool
	write     bool
	read      bool
	createNew bool
}

func (flags intentFlags) forwardIntent() opening.Intent {
	return opening.NewIntent().
		Create(flags.create).
		Truncate(flags.truncate).
		Append(flags.append).
		Write(flags.write).
		Read(flags.read).
		CreateNew(flags.createNew)
}

func (flags intentFlags) reverseIntent() opening.Intent {
	return opening.NewIntent().
		CreateNew(true).
		Read(true).
		Write(true).
		Append(true).
		Truncate(true).
		Create(true).
		CreateNew(flags.createNew).
		Read(flags.read).
		Write(flags.write).
		Append(flags.append).
		Truncate(flags.truncate).
		Create(flags.create)
}

func allIntentFlags() []intentFlags {
	combinations := make([]intentFlags, 0, 64)
	for mask := 0; mask < 64; mask++ {
		combinations = append(combinations, intentFlags{
			create:    mask&1 != 0,
			truncate:  mask&2 != 0,
			append:    mask&4 != 0,
			write:     mask&8 != 0,
			read:      mask&16 != 0,
			createNew: mask&32 != 0,
		})
	}
	return combinations
}

func TestResolveDecisionTable(testInstance *testing.T) {
	testCases := []struct {
		name           string
		intent         opening.Intent
		expectedMode   opening.Mode
		expectedAccess opening.Access
		expectedError  error
	}{
		{name: "nothing", intent: opening.NewIntent(), expectedError: opening.ErrNoAccess},
		{name: "create_only", intent: opening.NewIntent().Create(true), expectedError: opening.ErrNoAccess},
		{name: "truncate_only", intent: opening.NewIntent().Truncate(true), expectedError: opening.ErrTruncateWithoutWrite},
		{name: "create_new_only", intent: opening.NewIntent().CreateNew(true), expectedError: opening.ErrCreateNewWithoutWrite},
		{name: "read", intent: opening.NewIntent().Read(true), expectedMode: opening.ModeOpen, expectedAccess: opening.AccessRead},
		{name: "write", intent: opening.NewIntent().Write(true), expectedMode: opening.ModeOpen, expectedAccess: opening.AccessWrite},
		{name: "read_write", intent: opening.NewIntent().Read(true).Write(true), expectedMode: opening.ModeOpen, expectedAccess: opening.AccessReadWrite},
		{name: "append_only", intent: opening.NewIntent().Append(true), expectedMode: opening.ModeAppend, expectedAccess: opening.AccessWrite},
		{name: "write_append_disabled_write", intent: opening.NewIntent().Write(false).Append(true), expectedMode: opening.ModeAppend, expectedAccess: opening.AccessWrite},
		{name: "create_write", intent: opening.NewIntent().Create(true).Write(true), expectedMode: opening.ModeOpenOrCreate, expectedAccess: opening.AccessWrite},
		{name: "create_read", intent: opening.NewIntent().Create(true).Read(true), expectedMode: opening.ModeOpenOrCreate, expectedAccess: opening.AccessRead},
		{name: "create_append", intent: opening.NewIntent().Create(true).Append(true), expectedMode: opening.ModeOpenOrCreate, expectedAccess: opening.AccessWrite},
		{name: "truncate_write", intent: opening.NewIntent().Truncate(true).Write(true), expectedMode: opening.ModeTruncate, expectedAccess: opening.AccessWrite},
		{name: "truncate_read_write", intent: opening.NewIntent().Truncate(true).Read(true).Write(true), expectedMode: opening.ModeTruncate, expectedAccess: opening.AccessReadWrite},
		{name: "truncate_create_new_write", intent: opening.NewIntent().Truncate(true).CreateNew(true).Write(true), expectedMode: opening.ModeTruncate, expectedAccess: opening.AccessWrite},
		{name: "truncate_read", intent: opening.NewIntent().Truncate(true).Read(true), expectedError: opening.ErrTruncateWithoutWrite},
		{name: "truncate_append", intent: opening.NewIntent().Truncate(true).Append(true), expectedError: opening.ErrTruncateWithAppend},
		{name: "truncate_append_write", intent: opening.NewIntent().Truncate(true).Append(true).Write(true), expectedError: opening.ErrTruncateWithAppend},
		{name: "create_new_write", intent: opening.NewIntent().CreateNew(true).Write(true), expectedMode: opening.ModeCreateNew, expectedAccess: opening.AccessWrite},
		{name: "create_new_append", intent: opening.NewIntent().CreateNew(true).Append(true), expectedMode: opening.ModeCreateNew, expectedAccess: opening.AccessWrite},
		{name: "create_new_create_write", intent: opening.NewIntent().CreateNew(true).Create(true).Write(true), expectedMode: opening.ModeCreateNew, expectedAccess: opening.AccessWrite},
		{name: "create_new_read", intent: opening.NewIntent().CreateNew(true).Read(true), expectedError: opening.ErrCreateNewWithoutWrite},
		{name: "read_append", intent: opening.NewIntent().Read(true).Append(true), expectedMode: opening.ModeAppend, expectedAccess: opening.AccessRead},
		{name: "create_reset", intent: opening.NewIntent().Create(true).Read(true).Create(false), expectedMode: opening.ModeOpen, expectedAccess: opening.AccessRead},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			resolved, resolveError := testCase.intent.Resolve()
			if testCase.expectedError != nil {
				require.ErrorIs(subTest, resolveError, testCase.expectedError)
				require.ErrorIs(subTest, resolveError, fserrors.ErrInvalidConfiguration)
				return
			}

			require.NoError(subTest, resolveError)
			require.Equal(subTest, testCase.expectedMode, resolved.Mode)
			require.Equal(subTest, testCase.expectedAccess, resolved.Access)
			require.Equal(subTest, opening.ShareReadWrite, resolved.Share)
		})
	}
}

func TestResolveIsDeterministicAndOrderIndependent(testInstance *testing.T) {
	for _, flags := range allIntentFlags() {
		testInstance.Run(fmt.Sprintf("%+v", flags), func(subTest *testing.T) {
			forward := flags.forwardIntent()
			reverse := flags.reverseIntent()
			require.Equal(subTest, forward, reverse)
			require.True(subTest, forward == reverse)

			firstResolved, firstError := forward.Resolve()
			secondResolved, secondError := forward.Resolve()
			reverseResolved, reverseError := reverse.Resolve()

			require.Equal(subTest, firstResolved, secondResolved)
			require.Equal(subTest, firstResolved, reverseResolved)
			require.Equal(subTest, firstError == nil, secondError == nil)
			require.Equal(subTest, firstError == nil, reverseError == nil)
		})
	}
}

func TestResolveRejectsInvalidCombinationsForEveryOtherFlag(testInstance *testing.T) {
	for _, flags := range allIntentFlags() {
		_, resolveError := flags.forwardIntent().Resolve()
		hasAccess := flags.read || flags.write || flags.append

		switch {
		case flags.truncate && flags.append:
			require.ErrorIs(testInstance, resolveError, opening.ErrTruncateWithAppend, "%+v", flags)
		case flags.truncate && !flags.write:
			require.ErrorIs(testInstance, resolveError, opening.ErrTruncateWithoutWrite, "%+v", flags)
		case !flags.truncate && flags.createNew && !flags.write && !flags.append:
			require.ErrorIs(testInstance, resolveError, opening.ErrCreateNewWithoutWrite, "%+v", flags)
		case !hasAccess:
			require.ErrorIs(testInstance, resolveError, opening.ErrNoAccess, "%+v", flags)
		default:
			require.NoError(testInstance, resolveError, "%+v", flags)
		}
	}
}

func TestIntentEqualityIsStructural(testInstance *testing.T) {
	first := opening.NewIntent().Read(true).Write(true).Create(true)
	second := opening.NewIntent().Create(true).Write(true).Read(true)
	require.True(testInstance, first == second)

	require.False(testInstance, first == second.Truncate(true))
	require.False(testInstance, first == second.Create(false))
	require.True(testInstance, first == second.Append(true).Append(false))
	require.True(testInstance, opening.NewIntent() == opening.Intent{})
}

func TestIntentMutatorsReturnCopies(testInstance *testing.T) {
	original := opening.NewIntent().Read(true)
	derived := original.Write(true)

	originalResolved, originalError := original.Resolve()
	require.NoError(testInstance, originalError)
	require.Equal(testInstance, opening.AccessRead, originalResolved.Access)

	derivedResolved, derivedError := derived.Resolve()
	require.NoError(testInstance, derivedError)
	require.Equal(testInstance, opening.AccessReadWrite, derivedResolved.Access)
}

func TestResolvedOpenModeFlags(testInstance *testing.T) {
	testCases := []struct {
		name          string
		resolved      opening.ResolvedOpenMode
		expectedFlags int
	}{
		{name: "open_read", resolved: opening.ResolvedOpenMode{Mode: opening.ModeOpen, Access: opening.AccessRead}, expectedFlags: os.O_RDONLY},
		{name: "open_or_create_write", resolved: opening.ResolvedOpenMode{Mode: opening.ModeOpenOrCreate, Access: opening.AccessWrite}, expectedFlags: os.O_WRONLY | os.O_CREATE},
		{name: "create_new_write", resolved: opening.ResolvedOpenMode{Mode: opening.ModeCreateNew, Access: opening.AccessWrite}, expectedFlags: os.O_WRONLY | os.O_CREATE | os.O_EXCL},
		{name: "truncate_read_write", resolved: opening.ResolvedOpenMode{Mode: opening.ModeTruncate, Access: opening.AccessReadWrite}, expectedFlags: os.O_RDWR | os.O_TRUNC},
		{name: "append_write", resolved: opening.ResolvedOpenMode{Mode: opening.ModeAppend, Access: opening.AccessWrite}, expectedFlags: os.O_WRONLY | os.O_CREATE | os.O_APPEND},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			require.Equal(subTest, testCase.expectedFlags, testCase.resolved.Flags())
		})
	}
}

func TestModeAndAccessNames(testInstance *testing.T) {
	require.Equal(testInstance, "create-new", opening.ModeCreateNew.String())
	require.Equal(testInstance, "read-write", opening.AccessReadWrite.String())
	require.Equal(testInstance, "read-write", opening.ShareReadWrite.String())
	require.Equal(testInstance, "unknown", opening.Mode(42).String())
}
