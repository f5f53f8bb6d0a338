// Package models defines the core domain models for Tripledger.
//
// # Model Overview
//
//   - Trip: a planned trip with a base currency and a spend window
//   - TripMember: a user's membership in a trip (role + RSVP state)
//   - Milestone: a dated trip event; some kinds trigger lifecycle actions
//   - Expense: a monetary event on a trip, paid by one member
//   - CostAssignment: one member's share of an expense
//   - Settlement: a persisted debtor-to-creditor transfer record
//   - Checklist / ChecklistItem: shared packing and to-do lists
//   - Choice / ChoiceOption: menu-style group selections
//   - User: a registered account
//
// # Design Principles
//
//  1. Relationships use ID strings instead of pointers to avoid circular
//     references; display data (e.g. the payer on an expense) is joined in
//     by the storage layer where a response shape needs it.
//  2. Monetary fields are float64 in the expense's currency space; the
//     normalized fields are always derived as original amount times the
//     expense FX rate and recomputed on every write, never edited
//     independently.
//  3. Enum-like fields are typed string constants so they read naturally
//     in SQL rows and JSON payloads.
package models
