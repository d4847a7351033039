package ports

import "context"

// UserDirectory resolves user display names for capacity summaries. Unknown
// ids are simply absent from the result.
type UserDirectory interface {
	NamesByIDs(ctx context.Context, orgID string, ids []string) (map[string]string, error)
}
