package debug

// Debug controls additional runtime checks and logger verbosity in tests.
// It is toggled by the debug build tag.
const Debug = debugFlag
