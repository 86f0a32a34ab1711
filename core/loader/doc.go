// Package loader registers HTTP features on the Fiber app.
//
// A Feature reports its name and whether it is enabled, and mounts its routes in Load.
// The start command registers every feature with a Manager and calls LoadAll once the
// global middleware is in place. Disabled features are skipped and a Load failure
// aborts startup.
package loader
