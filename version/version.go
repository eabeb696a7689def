package version

// Build information (injected via ldflags - must NOT have default values)
var (
	Version   string
	GitSHA    string
	BuildDate string
)

// BootloaderVersion is the default version string reported in the
// startup banner when Version hasn't been set via ldflags.
const BootloaderVersion = "1.0.0"

// Banner returns the startup banner text, matching the shape the
// original firmware printed at boot.
func Banner() string {
	v := Version
	if v == "" {
		v = BootloaderVersion
	}
	build := BuildDate
	if build == "" {
		build = "unknown"
	}
	return "================================\n" +
		"           SimpleBoot           \n" +
		"================================\n" +
		"Version: " + v + "\n" +
		"Build:   " + build + "\n" +
		"================================"
}
