// Package utils provides small string helpers shared by the reconcile core
// and the feature packages.
package utils
