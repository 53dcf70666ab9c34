/*
Package cash keeps balances of the settlement asset in the same store as the
rest of the engine state.

Balances are moved inside of the engine transaction, so a failed operation
rolls back its transfers together with the ledger changes. Custody exposes
the controller as the funds collaborator of the ledger.
*/
package cash
