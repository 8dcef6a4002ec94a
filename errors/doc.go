/*
Package errors implements the error model shared by all quorum packages.

Reuse as many root errors from this package as possible and register custom
package errors only when a caller must be able to tell them apart. The
owner registry, the signature verifier and the execution engine each
register their own rejection errors this way.

To register a custom root error use Register(code, description). To create
an error instance at runtime use ErrXxx.New, ErrXxx.Newf or Wrap. The code
is a stable number that clients (CLI, HTTP API) use to distinguish failures.

A stack trace is attached at the innermost Wrap call. Do not create error
instances as global variables with New, or the stack trace is useless.

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context
	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
