package config

import (
	"sort"
	"strings"

	"github.com/spf13/viper"
)

const allowedOriginsVar = "ALLOWED_ORIGINS"

type Cors struct {
	v *viper.Viper
}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	sort.Strings(origins)
	return strings.Join(origins, ", ")
}

// GetAllowedOrigins parses the comma separated ALLOWED_ORIGINS value.
func (c Cors) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{}
	for _, o := range strings.Split(c.v.GetString(allowedOriginsVar), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = nullValue{}
		}
	}
	return origins
}

func (Cors) GetAllowedMethods() string {
	return "GET, OPTIONS"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type"
}
