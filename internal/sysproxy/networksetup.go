package sysproxy

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/comet/internal/model"
)

// macLocalDomains is what the <local> bypass rule means to macOS.
var macLocalDomains = []string{"*.local", "169.254/16", "localhost", "127.0.0.1", "::1"}

// networkSetup drives macOS networksetup for every enabled network service.
type networkSetup struct {
	run Runner
}

func (n *networkSetup) name() string { return "networksetup" }

func (n *networkSetup) set(ctx context.Context, cfg model.ProxyConfiguration) error {
	services, err := n.services(ctx)
	if err != nil {
		return err
	}

	p := cfg.Rules.SingleProxy
	port := strconv.Itoa(p.Port)
	bypass := macBypassDomains(cfg.Rules.BypassList)

	for _, svc := range services {
		if err := n.setService(ctx, svc, p.Host, port, bypass); err != nil {
			// Services changed so far stay proxied unless turned off again.
			if rollbackErr := n.clearServices(ctx, services); rollbackErr != nil {
				return errors.Join(err, fmt.Errorf("rollback failed: %w", rollbackErr))
			}
			return err
		}
	}
	return nil
}

// setService points one service at host:port. -setwebproxy and
// -setsecurewebproxy also turn the proxy state on.
func (n *networkSetup) setService(ctx context.Context, svc, host, port string, bypass []string) error {
	if err := n.networksetup(ctx, "-setwebproxy", svc, host, port); err != nil {
		return err
	}
	if err := n.networksetup(ctx, "-setsecurewebproxy", svc, host, port); err != nil {
		return err
	}
	args := append([]string{"-setproxybypassdomains", svc}, bypass...)
	return n.networksetup(ctx, args...)
}

func (n *networkSetup) clear(ctx context.Context) error {
	services, err := n.services(ctx)
	if err != nil {
		return err
	}
	return n.clearServices(ctx, services)
}

// clearServices turns both proxies off on every service, continuing past
// failures so one broken service does not keep the others proxied.
func (n *networkSetup) clearServices(ctx context.Context, services []string) error {
	var errs []error
	for _, svc := range services {
		if err := n.networksetup(ctx, "-setwebproxystate", svc, "off"); err != nil {
			errs = append(errs, err)
		}
		if err := n.networksetup(ctx, "-setsecurewebproxystate", svc, "off"); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// services lists the enabled network services.
func (n *networkSetup) services(ctx context.Context) ([]string, error) {
	out, err := n.run.Run(ctx, "networksetup", "-listallnetworkservices")
	if err != nil {
		return nil, err
	}
	services := parseNetworkServices(out)
	if len(services) == 0 {
		return nil, ErrNoNetworkService
	}
	return services, nil
}

func (n *networkSetup) networksetup(ctx context.Context, args ...string) error {
	_, err := n.run.Run(ctx, "networksetup", args...)
	return err
}

// parseNetworkServices parses `networksetup -listallnetworkservices` output.
// The first line is an informational header and disabled services are
// prefixed with an asterisk.
func parseNetworkServices(out []byte) []string {
	var services []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			if strings.HasPrefix(line, "An asterisk") {
				continue
			}
		}
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}
		services = append(services, line)
	}
	return services
}

// macBypassDomains expands the bypass list into networksetup bypass domains.
func macBypassDomains(bypass []string) []string {
	out := make([]string, 0, len(bypass)+len(macLocalDomains))
	for _, b := range bypass {
		if b == model.BypassLocal {
			out = append(out, macLocalDomains...)
			continue
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		// networksetup clears the list when given "Empty".
		return []string{"Empty"}
	}
	return out
}
