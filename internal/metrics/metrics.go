// Package metrics 提供Prometheus文本格式的监控指标
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// Registry 指标注册表
type Registry struct {
	counters   map[string]*Counter
	histograms map[string]*Histogram
	mu         sync.RWMutex
}

// Counter 计数器
type Counter struct {
	Name   string
	Help   string
	values map[string]float64
	mu     sync.RWMutex
}

// Histogram 直方图
type Histogram struct {
	Name    string
	Help    string
	Buckets []float64
	counts  map[string][]int
	sums    map[string]float64
	totals  map[string]int
	mu      sync.RWMutex
}

var (
	registry *Registry
	once     sync.Once
)

// Get 获取全局注册表
func Get() *Registry {
	once.Do(func() {
		registry = &Registry{
			counters:   make(map[string]*Counter),
			histograms: make(map[string]*Histogram),
		}
		registry.NewCounter("lunban_http_requests_total", "HTTP请求总数")
		registry.NewCounter("lunban_solve_total", "排班求解次数")
		registry.NewCounter("lunban_validation_total", "排班校验次数")
		registry.NewCounter("lunban_swap_transitions_total", "换班状态迁移次数")
		registry.NewHistogram("lunban_solve_duration_seconds", "排班求解耗时",
			[]float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30})
	})
	return registry
}

// NewCounter 注册计数器
func (r *Registry) NewCounter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &Counter{Name: name, Help: help, values: make(map[string]float64)}
	r.counters[name] = c
	return c
}

// NewHistogram 注册直方图
func (r *Registry) NewHistogram(name, help string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := &Histogram{
		Name:    name,
		Help:    help,
		Buckets: buckets,
		counts:  make(map[string][]int),
		sums:    make(map[string]float64),
		totals:  make(map[string]int),
	}
	r.histograms[name] = h
	return h
}

// Inc 计数器加一
func (r *Registry) Inc(name, labels string) {
	r.mu.RLock()
	c := r.counters[name]
	r.mu.RUnlock()
	if c == nil {
		return
	}
	c.mu.Lock()
	c.values[labels]++
	c.mu.Unlock()
}

// Observe 直方图记录观测值
func (r *Registry) Observe(name, labels string, value float64) {
	r.mu.RLock()
	h := r.histograms[name]
	r.mu.RUnlock()
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.counts[labels] == nil {
		h.counts[labels] = make([]int, len(h.Buckets))
	}
	for i, b := range h.Buckets {
		if value <= b {
			h.counts[labels][i]++
		}
	}
	h.sums[labels] += value
	h.totals[labels]++
}

// ObserveDuration 记录耗时
func (r *Registry) ObserveDuration(name, labels string, d time.Duration) {
	r.Observe(name, labels, d.Seconds())
}

// Handler 返回Prometheus文本格式的HTTP处理器
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		fmt.Fprint(w, r.Render())
	})
}

// Render 渲染全部指标
func (r *Registry) Render() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder

	names := make([]string, 0, len(r.counters))
	for n := range r.counters {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		c := r.counters[n]
		c.mu.RLock()
		fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s counter\n", c.Name, c.Help, c.Name)
		labels := make([]string, 0, len(c.values))
		for l := range c.values {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		for _, l := range labels {
			if l == "" {
				fmt.Fprintf(&sb, "%s %g\n", c.Name, c.values[l])
			} else {
				fmt.Fprintf(&sb, "%s{%s} %g\n", c.Name, l, c.values[l])
			}
		}
		c.mu.RUnlock()
	}

	names = names[:0]
	for n := range r.histograms {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		h := r.histograms[n]
		h.mu.RLock()
		fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s histogram\n", h.Name, h.Help, h.Name)
		labels := make([]string, 0, len(h.totals))
		for l := range h.totals {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		for _, l := range labels {
			for i, b := range h.Buckets {
				fmt.Fprintf(&sb, "%s_bucket{%sle=\"%g\"} %d\n", h.Name, labelPrefix(l), b, h.counts[l][i])
			}
			fmt.Fprintf(&sb, "%s_bucket{%sle=\"+Inf\"} %d\n", h.Name, labelPrefix(l), h.totals[l])
			fmt.Fprintf(&sb, "%s_sum{%s} %g\n", h.Name, l, h.sums[l])
			fmt.Fprintf(&sb, "%s_count{%s} %d\n", h.Name, l, h.totals[l])
		}
		h.mu.RUnlock()
	}

	return sb.String()
}

func labelPrefix(labels string) string {
	if labels == "" {
		return ""
	}
	return labels + ","
}
