package metrics

// Gin middleware exporting request metrics, after github.com/zsais/go-gin-prometheus.

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var httpLabels = []string{"code", "method", "url"}

var reqCnt = &Metric{
	ID:          "reqCnt",
	Name:        "req_total",
	Description: "How many HTTP requests processed, partitioned by status code, method and route.",
	Type:        "counter_vec",
	Args:        httpLabels,
}

var reqDur = &Metric{
	ID:          "reqDur",
	Name:        "req_dur_ms",
	Description: "The HTTP request latencies in milliseconds.",
	Type:        "histogram_vec",
	Args:        httpLabels,
}

var reqSz = &Metric{
	ID:          "reqSz",
	Name:        "req_sz_bytes",
	Description: "The HTTP request sizes in bytes.",
	Type:        "summary_vec",
	Args:        httpLabels,
}

var resSz = &Metric{
	ID:          "resSz",
	Name:        "resp_sz_bytes",
	Description: "The HTTP response sizes in bytes.",
	Type:        "summary_vec",
	Args:        httpLabels,
}

const defaultMetricPath = "/metrics"

// Logger is satisfied by *zap.SugaredLogger.
type Logger interface {
	Errorf(format string, v ...interface{})
}

type stdLogger struct{}

func (stdLogger) Errorf(format string, v ...interface{}) { log.Printf(format, v...) }

// URLLabelFn maps a request to its "url" label. Use the route template, not the raw
// path, or every app id becomes its own series.
type URLLabelFn func(c *gin.Context) string

// Prometheus holds the HTTP collectors and where they are exposed.
type Prometheus struct {
	reqCnt       *prometheus.CounterVec
	reqDur       *prometheus.HistogramVec
	reqSz, resSz *prometheus.SummaryVec

	listenAddress string
	MetricsPath   string
	urlLabel      URLLabelFn
	logger        Logger
}

type NewPrometheusOptions struct {
	Subsystem               string
	MetricsPath             string
	ReqCntURLLabelMappingFn func(c *gin.Context) string
	Logger                  Logger
}

func NewPrometheus(options NewPrometheusOptions) *Prometheus {
	p := &Prometheus{
		MetricsPath: options.MetricsPath,
		urlLabel:    options.ReqCntURLLabelMappingFn,
		logger:      options.Logger,
	}
	if p.MetricsPath == "" {
		p.MetricsPath = defaultMetricPath
	}
	if p.urlLabel == nil {
		p.urlLabel = func(c *gin.Context) string {
			if fp := c.FullPath(); fp != "" {
				return fp
			}
			return "unmatched"
		}
	}
	if p.logger == nil {
		p.logger = stdLogger{}
	}
	p.registerMetrics(options.Subsystem)
	return p
}

// SetListenAddress exposes the metrics on a separate listener instead of the app engine.
func (p *Prometheus) SetListenAddress(address string) {
	p.listenAddress = address
}

func (p *Prometheus) registerMetrics(subsystem string) {
	collect := func(m *Metric) prometheus.Collector {
		c, err := register(m, subsystem)
		if err != nil {
			p.logger.Errorf("%s could not be registered in Prometheus, err=%v", m.Name, err)
		}
		return c
	}
	p.reqCnt = collect(reqCnt).(*prometheus.CounterVec)
	p.reqDur = collect(reqDur).(*prometheus.HistogramVec)
	p.reqSz = collect(reqSz).(*prometheus.SummaryVec)
	p.resSz = collect(resSz).(*prometheus.SummaryVec)
}

// Use adds the middleware to e and mounts the metrics path, on e or on the separate listener.
func (p *Prometheus) Use(e *gin.Engine) {
	e.Use(p.HandlerFunc())
	if p.listenAddress == "" {
		e.GET(p.MetricsPath, prometheusHandler())
		return
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET(p.MetricsPath, prometheusHandler())
	srv := &http.Server{Addr: p.listenAddress, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Errorf("metrics server error: %v", err)
		}
	}()
}

func (p *Prometheus) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == p.MetricsPath {
			c.Next()
			return
		}

		start := time.Now()
		reqSize := computeApproximateRequestSize(c.Request)

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		url := p.urlLabel(c)
		method := c.Request.Method

		p.reqDur.WithLabelValues(status, method, url).Observe(MillisecondsSince(start))
		p.reqCnt.WithLabelValues(status, method, url).Inc()
		p.reqSz.WithLabelValues(status, method, url).Observe(float64(reqSize))
		p.resSz.WithLabelValues(status, method, url).Observe(float64(c.Writer.Size()))
	}
}
