// Package csvio reads the external tables an estimation run consumes:
// the turbine base table, manufacturer power curves, meteorological
// series, sunrise/sunset times and observed production. Missing files
// and missing columns are structural failures and abort the turbine's
// run; missing numeric readings inside a series become NaN and are
// handled downstream.
package csvio
