// Package shell implements the interactive prompt behind `cv cli`.
//
// Every line is split with POSIX shell quoting rules and handed to an
// executor that runs it as a fresh cv invocation. On a terminal the prompt is
// a small Bubble Tea line editor with history; otherwise lines are read
// plainly so the shell can be scripted through a pipe.
package shell
