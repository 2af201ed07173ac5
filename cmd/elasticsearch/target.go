package elasticsearch

import (
	"fmt"

	"github.com/stackvista/esconfig/cmd/portforward"
	"github.com/stackvista/esconfig/internal/config"
	"github.com/stackvista/esconfig/internal/elasticsearch"
	"github.com/stackvista/esconfig/internal/k8s"
	"github.com/stackvista/esconfig/internal/logger"
	"github.com/stackvista/esconfig/internal/output"
)

// Swapped out in tests
var (
	newESClient = func(baseURL string) (elasticsearch.Interface, error) {
		return elasticsearch.NewClient(baseURL)
	}
	newK8sClient = func(kubeconfig string, debug bool) (k8s.Interface, error) {
		return k8s.NewClient(kubeconfig, debug)
	}
)

// target is the cluster a single invocation works on. It is built fresh by
// every operation and never outlives it.
type target struct {
	cliCtx *config.Context
	log    *logger.Logger
	cfg    *config.Config
	env    string
	host   string // configured host; replaced by the local URL once a port-forward is up
	client elasticsearch.Interface
	pf     *portforward.Conn
}

func newLogger(cliCtx *config.Context) *logger.Logger {
	return logger.NewWithWriter(cliCtx.Config.Out, cliCtx.Config.Quiet, cliCtx.Config.Debug)
}

// loadTarget loads the configuration and resolves the environment and its
// host. Nothing touches the network until connect is called.
func loadTarget(cliCtx *config.Context, args []string, log *logger.Logger) (*target, error) {
	cfg, err := config.LoadConfig(cliCtx.Config.Dir)
	if err != nil {
		return nil, err
	}

	var envArg string
	if len(args) > 0 {
		envArg = args[0]
	}
	env := config.ResolveEnvironment(envArg, cliCtx.Config.Dir, cfg)
	log.Infof("Detected environment: %s", env)

	host, err := cfg.HostFor(env)
	if err != nil {
		return nil, err
	}

	return &target{
		cliCtx: cliCtx,
		log:    log,
		cfg:    cfg,
		env:    env,
		host:   host,
	}, nil
}

// forward sets up the port-forward for k8s:// hosts and points host at it.
// Plain URLs are left alone.
func (t *target) forward() error {
	if !k8s.IsServiceURL(t.host) {
		return nil
	}

	svc, err := k8s.ParseServiceURL(t.host)
	if err != nil {
		return err
	}

	k8sClient, err := newK8sClient(t.cliCtx.Config.Kubeconfig, t.cliCtx.Config.Debug)
	if err != nil {
		return fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	t.pf, err = portforward.ForService(k8sClient, svc, t.log)
	if err != nil {
		return err
	}
	t.host = svc.LocalURL()

	return nil
}

// connect creates the cluster client, forwarding first when needed
func (t *target) connect() error {
	if err := t.forward(); err != nil {
		return err
	}

	t.log.Debugf("Using cluster at %s", t.host)

	client, err := newESClient(t.host)
	if err != nil {
		return fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	t.client = client

	return nil
}

// close tears down the port-forward, if any
func (t *target) close() {
	if t.pf != nil {
		t.pf.Close()
		t.pf = nil
	}
}

// report prints the outcome of one remote call
func (t *target) report(err error) {
	if err != nil {
		t.log.Failuref("%v", err)
		return
	}
	t.log.Successf("Success")
}

// reportDelete is report for deletions, where a missing resource is fine
func (t *target) reportDelete(err error) error {
	if elasticsearch.IsNotFound(err) {
		t.log.Successf("Not found, nothing to delete")
		return nil
	}
	t.report(err)
	return err
}

func (t *target) printSummary(summary *output.Summary) {
	if t.log.Quiet() {
		return
	}
	if err := output.NewFormatter(t.log.Writer()).PrintTable(summary.Table()); err != nil {
		t.log.Warningf("failed to print summary: %v", err)
	}
	t.log.Println()
}

// runOperation prints the banner, runs op and renders any error it returns
// as a single [ERROR: ...] line.
func runOperation(cliCtx *config.Context, banner string, op func(*logger.Logger) error) error {
	log := newLogger(cliCtx)
	log.Infof("[%s]", banner)
	log.Println()

	if err := op(log); err != nil {
		log.Errorf("%v", err)
		log.Println()
		return err
	}

	return nil
}

// itemLabel names a configuration entry for the summary, even when unnamed
func itemLabel(i int, name string) string {
	if name == "" {
		return fmt.Sprintf("#%d", i+1)
	}
	return name
}

// failedSteps is returned when some, but not necessarily all, items failed
func failedSteps(summary *output.Summary) error {
	if n := summary.Failures(); n > 0 {
		return fmt.Errorf("%d step(s) failed", n)
	}
	return nil
}
