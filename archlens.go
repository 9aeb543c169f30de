// Package archlens provides a terminal client for the ArchLens package
// catalog API. It browses packages grouped by category, runs free-text
// search, and submits natural-language problem descriptions to receive
// ranked package suggestions with install commands.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, sqlite/, cache/).
package archlens
