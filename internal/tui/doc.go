// Package tui is the interactive terminal front end of the table renderer.
//
// A Model wraps one table.Table. Key presses become table events, and
// server paging or search requests become asynchronous page loads. While a
// load is in flight the table is rendered in its loading state, which also
// blocks further page changes.
package tui
