// Package repl drives an interactive Nix REPL subprocess to answer
// completion requests for a partial identifier path.
//
// One live subprocess backs each distinct source buffer; the Manager owns
// the mapping and tears a session down when its buffer's contents change.
// An exchange sends the prefix plus a completion trigger over stdin, then
// waits (with a deadline, never indefinitely) for the prompt marker to come
// back on stdout. Ambiguous candidate sets that overflow the subprocess's
// display threshold are declined and reported as an empty list; every other
// failure mode also degrades to an empty list rather than an error.
//
// While an exchange is in flight the session's output is redirected into a
// private scratch buffer and restored unconditionally afterwards, so
// concurrent observers never see half a protocol exchange.
package repl
