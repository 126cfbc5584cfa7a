package config

// Config carries suite-wide state resolved once in BeforeSuite and
// shared by the e2e helper packages.
type Config struct {
	// MMAAIBin is the absolute path of the mma-ai binary under test.
	MMAAIBin string
}
