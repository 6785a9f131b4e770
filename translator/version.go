package translator

// Version is the current semantic version of the medtranslate library.
const Version = "0.3.0"

// VersionInfo encapsulates version metadata for runtime reporting.
type VersionInfo struct {
	Version string
	Name    string
}

// GetVersion returns structured version information for the library.
func GetVersion() VersionInfo {
	return VersionInfo{
		Version: Version,
		Name:    "medtranslate",
	}
}
