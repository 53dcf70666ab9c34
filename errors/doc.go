/*
Package errors implements the error interfaces used across yieldshift.

Every failure returned by an engine operation wraps one of the root errors
declared in this package. A root error carries a code that is stable and can
be exposed to the client (for example in an HTTP response), so that a caller
can distinguish a claim rejected because of the holding period from a claim
rejected because of missing funds.

If you want to register a custom error use Register(code, description).
To reuse an existing error use Errxxx.New and Errxxx.Newf or Wrap/Wrapf.

Stack traces are attached at the innermost wrap. Use

	%s to print the error message only
	%+v to print the full stack trace
	%v to print the message followed by a compressed [filename:line]

Test if an error is of a given kind with the Is method:

	if errors.ErrHoldingPeriodNotMet.Is(err) {
		...
	}
*/
package errors
