// Package pde prices a single-underlying call on a finite-difference grid of
// the Black-Scholes-Merton equation. Time is stepped backward from maturity to
// the valuation date with a theta scheme. American exercise is enforced by
// projecting onto the exercise value after every solve, and discrete cash
// dividends are applied as a jump of the price coordinate at the time level on
// or before each payment.
//
// Every call builds and discards its own Grid, so concurrent callers need no
// coordination.
package pde
