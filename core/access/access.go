package access

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	Anonymous = "anonymous"
	User      = "user"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// a signed-in user can do everything an anonymous visitor can
var defaultPolicies = [][]string{
	{Anonymous, "/", "GET"},
	{Anonymous, "/login", "GET"},
	{Anonymous, "/healthz", "GET"},
	{Anonymous, "/static/*", "GET"},
	{Anonymous, "/api/auth/login", "POST"},
	{Anonymous, "/api/auth/me", "GET"},
	{Anonymous, "/api/notifications", "GET"},
	{Anonymous, "/api/notifications/:id", "DELETE"},
	{User, "/dashboard", "GET"},
	{User, "/table", "GET"},
	{User, "/api/*", "*"},
}

type Enforcer struct {
	e *casbin.Enforcer
}

func New() (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("access model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("access enforcer: %w", err)
	}
	if _, err := e.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("access policies: %w", err)
	}
	if _, err := e.AddGroupingPolicy(User, Anonymous); err != nil {
		return nil, fmt.Errorf("access grouping: %w", err)
	}
	return &Enforcer{e: e}, nil
}

// Allowed reports whether subject may call method on path. Enforcement errors deny.
func (a *Enforcer) Allowed(subject, path, method string) bool {
	ok, err := a.e.Enforce(subject, path, method)
	return err == nil && ok
}

func SubjectFor(signedIn bool) string {
	if signedIn {
		return User
	}
	return Anonymous
}
