package filesystem

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// probeByCreatingFile creates and removes a uniquely named file inside directoryPath.
func (gateway *Gateway) probeByCreatingFile(directoryPath string) bool {
	probePath := filepath.Join(directoryPath, writabilityProbeFilePrefixConstant+uuid.NewString())

	probeFile, createError := gateway.backend.OpenFile(probePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, writabilityProbeFilePermissionsConstant)
	if createError != nil {
		return false
	}

	closeError := probeFile.Close()
	removeError := gateway.backend.Remove(probePath)
	return closeError == nil && removeError == nil
}
