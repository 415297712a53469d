// Package fixtures builds the observations, registries and index entries shared by the
// tests of the vodf packages.
package fixtures
