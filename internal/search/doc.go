// Package search provides the bounded filesystem traversal engine behind the
// file explorer's search tools.
//
// Every search tool (quick search, drive search, extension search, large file
// search, recent file monitoring, temp file cleanup and duplicate detection) is
// a thin configuration of one walker. The walker enforces all the bounds; the
// tools only choose a Matcher, a Scope and the limits.
//
// # Bounds
//
// A walk is constrained by:
//   - MaxDepth: a directory whose depth below the root is >= MaxDepth is neither
//     listed nor descended. Depth is the number of path separators between the
//     root and the directory, so the root itself has depth 0.
//   - Excluded: child directories whose name is in the exclusion list, or whose
//     name starts with ".", are pruned before recursion and never visited.
//   - PerDirFileCap: at most this many file entries are tested per directory,
//     in listing order.
//   - MaxResults: the walk stops as soon as this many items were collected.
//   - Timeout: the walk stops once the elapsed wall-clock time reaches it.
//
// The two abort conditions (result cap and timeout) are evaluated after every
// single candidate test, not just per directory, because one directory can hold
// more matches than the cap.
//
// # Error policy
//
// The walker skips any entry or directory that cannot be listed or inspected
// (permission denied, vanished entries, transient I/O errors) and continues
// with its siblings. Only a missing root fails a search. Nothing in this package
// returns an error or panics across its boundary; failures are reported through
// Result.Success and Result.Message.
//
// # Matching
//
// The name predicate succeeds when the (case-normalized) pattern is a literal
// substring of the name, or when it matches the name as a glob expression:
//
//	"*.txt"  matches "a.txt", not "a.tx"
//	"config" matches "myconfig.json" (substring)
//	"rep?rt" matches "report.pdf"    (glob against full name fails, substring fails,
//	                                  so this one does NOT match; use "rep?rt*")
//
// Metadata predicates (extension allow-list, minimum size, modified within a
// window, older than an age) are combined with All.
//
// # Filesystem and clock
//
// The Engine reads through an afero.Fs and takes time from an injected clock.
// It never consults the process working directory or home directory: callers
// resolve roots before building a Request.
package search
