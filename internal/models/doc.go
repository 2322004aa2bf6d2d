// Package models defines the core domain models for BillMap.
//
// # Models
//
//   - User: A registered account that owns bills and reminders
//   - Bill: A debt owed to a creditor, with an amount and a due date
//   - Reminder: A scheduled notification tied to one bill
//
// # Lifecycle
//
// Every model carries the same lifecycle fields: a UUID string ID assigned
// by the store at insert time, CreatedAt/UpdatedAt unix-second timestamps,
// and a nullable DeletedAt. A record is active while DeletedAt is nil;
// soft-deleted records stay in storage but are invisible to every default
// query. Nothing is hard-deleted by the services.
//
// # Money
//
// All amounts are integer minor units (cents). Decimal strings exist only
// at the wire boundary (see pkg/money); float64 is never used for money.
//
// # Status transitions
//
// Bill status moves pending -> paid and never back. Reminder status moves
// pending -> sent and never back. Both transitions are enforced by the
// services and guarded again by the store's conditional updates.
package models
