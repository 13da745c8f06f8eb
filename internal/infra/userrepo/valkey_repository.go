package userrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/usergate/internal/domain/user"
)

// replaceScript overwrites the record only when it still exists.
var replaceScript = valkey.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	redis.call('SET', KEYS[1], ARGV[1])
	return 1
end
return 0`)

// removeScript deletes the record and its index entry, returning the old value.
var removeScript = valkey.NewLuaScript(`
local v = redis.call('GET', KEYS[1])
if v then
	redis.call('DEL', KEYS[1])
	redis.call('ZREM', KEYS[2], ARGV[1])
end
return v`)

// ValkeyRepository stores users as JSON strings with a sorted id index. Ids come from INCR.
// All keys share one hash tag so MGET and the scripts stay on a single slot.
type ValkeyRepository struct {
	client valkey.Client
	prefix string
}

// NewValkeyRepository constructs the repository. prefix namespaces every key.
func NewValkeyRepository(client valkey.Client, prefix string) *ValkeyRepository {
	if prefix == "" {
		prefix = "usergate"
	}
	return &ValkeyRepository{client: client, prefix: prefix}
}

// Close shuts the client down.
func (r *ValkeyRepository) Close() error {
	r.client.Close()
	return nil
}

// List returns every user ordered by id.
func (r *ValkeyRepository) List(ctx context.Context) ([]user.User, error) {
	ids, err := r.client.Do(ctx, r.client.B().Zrange().Key(r.indexKey()).Min("0").Max("-1").Build()).AsStrSlice()
	if err != nil {
		return nil, err
	}
	out := make([]user.User, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.userKey(id)
	}
	values, err := r.client.Do(ctx, r.client.B().Mget().Key(keys...).Build()).ToArray()
	if err != nil {
		return nil, err
	}
	for _, value := range values {
		raw, err := value.ToString()
		if err != nil {
			if valkey.IsValkeyNil(err) {
				continue
			}
			return nil, err
		}
		u, err := decodeUser(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// Get fetches by id.
func (r *ValkeyRepository) Get(ctx context.Context, id int64) (user.User, bool, error) {
	raw, err := r.client.Do(ctx, r.client.B().Get().Key(r.userKey(strconv.FormatInt(id, 10))).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, err
	}
	u, err := decodeUser(raw)
	if err != nil {
		return user.User{}, false, err
	}
	return u, true, nil
}

// FindByName scans the collection for name.
func (r *ValkeyRepository) FindByName(ctx context.Context, name string) (user.User, bool, error) {
	users, err := r.List(ctx)
	if err != nil {
		return user.User{}, false, err
	}
	for _, u := range users {
		if u.Name == name {
			return u, true, nil
		}
	}
	return user.User{}, false, nil
}

// Add assigns the next sequence value and stores the record.
func (r *ValkeyRepository) Add(ctx context.Context, u user.User) (user.User, error) {
	id, err := r.client.Do(ctx, r.client.B().Incr().Key(r.seqKey()).Build()).AsInt64()
	if err != nil {
		return user.User{}, err
	}
	u.ID = id
	encoded, err := json.Marshal(u)
	if err != nil {
		return user.User{}, err
	}
	member := strconv.FormatInt(id, 10)
	results := r.client.DoMulti(ctx,
		r.client.B().Set().Key(r.userKey(member)).Value(string(encoded)).Build(),
		r.client.B().Zadd().Key(r.indexKey()).ScoreMember().ScoreMember(float64(id), member).Build(),
	)
	for _, res := range results {
		if err := res.Error(); err != nil {
			return user.User{}, err
		}
	}
	return u, nil
}

// Replace overwrites the mutable fields of an existing user.
func (r *ValkeyRepository) Replace(ctx context.Context, id int64, fields user.Payload) (user.User, bool, error) {
	existing, found, err := r.Get(ctx, id)
	if err != nil || !found {
		return user.User{}, found, err
	}
	existing.Name = fields.Name
	existing.Email = fields.Email
	existing.Department = fields.Department
	encoded, err := json.Marshal(existing)
	if err != nil {
		return user.User{}, false, err
	}
	key := r.userKey(strconv.FormatInt(id, 10))
	replaced, err := replaceScript.Exec(ctx, r.client, []string{key}, []string{string(encoded)}).AsInt64()
	if err != nil {
		return user.User{}, false, err
	}
	if replaced == 0 {
		return user.User{}, false, nil
	}
	return existing, true, nil
}

// Remove deletes the record and returns it.
func (r *ValkeyRepository) Remove(ctx context.Context, id int64) (user.User, bool, error) {
	member := strconv.FormatInt(id, 10)
	raw, err := removeScript.Exec(ctx, r.client, []string{r.userKey(member), r.indexKey()}, []string{member}).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, err
	}
	u, err := decodeUser(raw)
	if err != nil {
		return user.User{}, false, err
	}
	return u, true, nil
}

func decodeUser(raw string) (user.User, error) {
	var u user.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return user.User{}, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

func (r *ValkeyRepository) userKey(id string) string {
	return fmt.Sprintf("{%s}:user:%s", r.prefix, id)
}

func (r *ValkeyRepository) indexKey() string {
	return fmt.Sprintf("{%s}:users", r.prefix)
}

func (r *ValkeyRepository) seqKey() string {
	return fmt.Sprintf("{%s}:users:seq", r.prefix)
}

var _ user.Repository = (*ValkeyRepository)(nil)
