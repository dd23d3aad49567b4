package ports

// BrowserLauncher opens the presentation URL in a local browser at startup.
type BrowserLauncher interface {
	// Launch opens url unless noOpen suppresses it.
	Launch(url string, noOpen bool) error
	// Detect reports which browser Launch would use.
	Detect() (string, error)
}
