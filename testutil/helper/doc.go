// Package helper provides row fixtures, database arrangement helpers and observability spies
// for testing the catalogue engine.
package helper
