// Package prompt provides operator confirmation for destructive steps.
//
// Stdin reads a yes/no answer from a terminal and defaults to no on anything
// other than "y" or "yes". Fixed answers without asking, which is what the
// --yes and --no flags and the tests use.
package prompt
