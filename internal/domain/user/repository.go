package user

import "context"

// Repository abstracts user persistence. Implementations must be safe for
// concurrent use and assign ids in Add.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, bool, error)
	FindByName(ctx context.Context, name string) (User, bool, error)
	Add(ctx context.Context, u User) (User, error)
	Replace(ctx context.Context, id int64, fields Payload) (User, bool, error)
	Remove(ctx context.Context, id int64) (User, bool, error)
}
