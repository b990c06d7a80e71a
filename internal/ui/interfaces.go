package ui

// StatusBar is an interface for pages that display a status bar.
// Pages implementing this interface will have their height reduced by 1
// to account for the status bar when window size is calculated.
type StatusBar interface {
	// StatusBar returns the rendered status bar string
	StatusBar() string
}

// InputCapture is implemented by pages with a text input. While Capturing
// returns true the app leaves every key to the page.
type InputCapture interface {
	Capturing() bool
}
