// Package feature derives the numeric feature vectors consumed by the
// mastery predictor and the exercise bandit. All extraction is pure: callers
// fetch the vocabulary item and review events, and the functions here only
// compute over them.
//
// The field order of the assembled vectors is part of the persisted model
// contract. Any change to the order or length invalidates stored model
// coefficients and must bump SchemaVersion.
package feature
