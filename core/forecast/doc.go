// Package forecast fits seasonal demand models on hourly restaurant
// order series and produces point and interval forecasts for future
// hours. Fitted models serialize to opaque artifacts so runs can be
// decoupled from training.
package forecast
