/*
Package ledger implements the yield ledger.

Incoming yield is split between the user and the hedger pool accumulators
according to the live allocation. Collaborator pools credit pending yield to
individual participants, who later claim it from the accumulator of their
pool. User claims are allowed only after MinHoldingPeriod has passed since the
last deposit of the participant. Hedger claims are not gated.

The ledger keeps the following invariant at all times:

	UserPoolYield + HedgerPoolYield <= TotalGenerated - TotalDistributed

Every state write validates it, so an operation breaking it fails as a whole.
*/
package ledger
