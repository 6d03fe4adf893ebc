package helm

import "strings"

// staleRepositoryMarker is printed by helm when a chart is missing from an outdated local
// repository index.
const staleRepositoryMarker = "try 'helm repo update'"

// IsStaleRepositoryError reports whether err was caused by an outdated local repository
// index, in which case refreshing the index and retrying once may succeed.
func IsStaleRepositoryError(err error) bool {
	return err != nil && strings.Contains(err.Error(), staleRepositoryMarker)
}
