// Package curtail evaluates blanket and smart curtailment policies
// against the daylight work window mandated for wildlife protection.
// For each day of the configured season the restricted period is the
// complement of (sunrise+buffer, sunset-buffer): turbines may have to
// stop in the pre-dawn and post-dusk segments when wind is below a
// candidate cut-in threshold.
package curtail
