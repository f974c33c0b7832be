package sysproxy

import (
	"context"
	"strconv"
	"strings"

	"github.com/nao1215/comet/internal/model"
)

// gnomeLocalHosts is what the <local> bypass rule means to GNOME.
var gnomeLocalHosts = []string{"localhost", "127.0.0.0/8", "::1"}

// gnome drives org.gnome.system.proxy through gsettings.
type gnome struct {
	run Runner
}

func (g *gnome) name() string { return "gsettings" }

func (g *gnome) set(ctx context.Context, cfg model.ProxyConfiguration) error {
	p := cfg.Rules.SingleProxy
	host := "'" + escapeGVariantString(p.Host) + "'"
	port := strconv.Itoa(p.Port)

	for _, section := range []string{"http", "https"} {
		schema := "org.gnome.system.proxy." + section
		if err := g.gsettings(ctx, schema, "host", host); err != nil {
			return err
		}
		if err := g.gsettings(ctx, schema, "port", port); err != nil {
			return err
		}
	}

	ignore := formatGVariantStringList(gnomeIgnoreHosts(cfg.Rules.BypassList))
	if err := g.gsettings(ctx, "org.gnome.system.proxy", "ignore-hosts", ignore); err != nil {
		return err
	}

	// Switch the mode last so a failure above never leaves a half-written
	// proxy active.
	return g.gsettings(ctx, "org.gnome.system.proxy", "mode", "'manual'")
}

func (g *gnome) clear(ctx context.Context) error {
	return g.gsettings(ctx, "org.gnome.system.proxy", "mode", "'none'")
}

func (g *gnome) gsettings(ctx context.Context, schema, key, value string) error {
	_, err := g.run.Run(ctx, "gsettings", "set", schema, key, value)
	return err
}

// gnomeIgnoreHosts expands the bypass list into GNOME ignore-hosts entries.
func gnomeIgnoreHosts(bypass []string) []string {
	out := make([]string, 0, len(bypass)+len(gnomeLocalHosts))
	for _, b := range bypass {
		if b == model.BypassLocal {
			out = append(out, gnomeLocalHosts...)
			continue
		}
		out = append(out, b)
	}
	return out
}

// formatGVariantStringList renders items as a GVariant string array.
func formatGVariantStringList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "'" + escapeGVariantString(it) + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// escapeGVariantString escapes the single-quote delimiter.
func escapeGVariantString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}
