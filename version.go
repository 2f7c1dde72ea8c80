package historyviewer

// Version is the release of the history viewer library and binaries.
const Version = "0.3.0"
