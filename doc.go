// Package finance provides the types and computations of a local-first
// personal finance tracker.
//
// Everything is derived from a single append-only ledger of JSON lines:
//   - Transactions: income and expenses, each in a closed list of categories,
//     classified into Needs, Wants, Investments and Savings buckets.
//   - Budgets: monthly limits per category, pro-rated over the month, with
//     optional rollover of unspent amounts.
//   - Subscriptions: recurring charges, their billing dates and the charges
//     still to be recorded.
//   - Investments: holdings and price points, valued with trailing returns,
//     CAGR and XIRR.
//   - Learn progress and notifications.
//
// Reports (analytics, budgets, NWI breakdown, anomalies, portfolio) are
// stateless functions of the ledger and a date.
package finance
