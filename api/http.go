package api

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/craftops/console-agent/manager/console"
	"github.com/craftops/console-agent/manager/jobs"
	"github.com/craftops/console-agent/manager/status"
	"github.com/craftops/console-agent/notify"
	"github.com/craftops/console-agent/types"
	"github.com/craftops/console-agent/utils"
	"github.com/craftops/console-agent/version"

	"github.com/bmizerany/pat"
	units "github.com/docker/go-units"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	log "github.com/sirupsen/logrus"
)

func jsonEncode(w io.Writer, v interface{}) error {
	return json.NewEncoder(w).Encode(v)
}

// Handler serves local consumers: everything the page controllers used
// to read off component state is pulled from these endpoints instead
type Handler struct {
	config         *types.Config
	consoleManager *console.Manager
	jobManager     *jobs.Manager
	statusManager  *status.Manager
	notifier       *notify.Dispatcher
	started        utils.AtomicBool
}

// NewHandler .
func NewHandler(config *types.Config, consoleManager *console.Manager, jobManager *jobs.Manager, statusManager *status.Manager, notifier *notify.Dispatcher) *Handler {
	return &Handler{
		config:         config,
		consoleManager: consoleManager,
		jobManager:     jobManager,
		statusManager:  statusManager,
		notifier:       notifier,
	}
}

// URL /version/
func (h *Handler) version(req *Request) (int, interface{}) {
	return http.StatusOK, JSON{"version": version.VERSION}
}

// URL /profile/
func (h *Handler) profile(req *Request) (int, interface{}) {
	r := JSON{}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err == nil {
		if cpu, err := proc.CPUPercent(); err == nil {
			r["cpu_percent"] = cpu
		}
		if memInfo, err := proc.MemoryInfo(); err == nil {
			r["rss"] = units.BytesSize(float64(memInfo.RSS))
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		r["host_mem_used_percent"] = vm.UsedPercent
	}
	return http.StatusOK, r
}

// URL /logs/
func (h *Handler) logs(req *Request) (int, interface{}) {
	buffer := h.consoleManager.Buffer()
	if req.Filter != "" {
		buffer.SetFilter(console.Filter(req.Filter))
	}
	matches := -1
	if req.Search != "" {
		matches = buffer.Search(req.Search)
	}
	return http.StatusOK, JSON{
		"entries": buffer.Visible(),
		"preview": buffer.Preview(),
		"pending": buffer.PendingCount(),
		"matches": matches,
	}
}

// URL /logs/export/
func (h *Handler) exportLogs(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=console.log")
	if err := h.consoleManager.Buffer().Export(w); err != nil {
		log.Errorf("[api] export logs failed: %v", err)
	}
}

// URL /jobs/
func (h *Handler) listJobs(req *Request) (int, interface{}) {
	return http.StatusOK, JSON{
		"active": h.jobManager.Active(),
		"recent": h.jobManager.Recent(req.Limit),
	}
}

// URL /jobs/ POST
func (h *Handler) submitJob(req *Request) (int, interface{}) {
	var body struct {
		Action  string                 `json:"action"`
		Target  string                 `json:"target"`
		Options map[string]interface{} `json:"options"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return http.StatusBadRequest, JSON{"error": err.Error()}
	}
	ID, err := h.jobManager.Submit(req.Context(), types.JobAction(body.Action), body.Target, body.Options)
	if err != nil {
		return http.StatusBadGateway, JSON{"error": err.Error()}
	}
	return http.StatusOK, JSON{"id": ID}
}

// URL /jobs/:id/cancel
func (h *Handler) cancelJob(req *Request) (int, interface{}) {
	ID := req.URL.Query().Get(":id")
	if err := h.jobManager.Cancel(req.Context(), ID); err != nil {
		return http.StatusBadGateway, JSON{"error": err.Error()}
	}
	return http.StatusOK, JSON{"id": ID}
}

// URL /status/
func (h *Handler) serverStatus(req *Request) (int, interface{}) {
	st := h.statusManager.Status()
	if st == nil {
		// nothing fetched yet, the offline placeholder case
		return http.StatusOK, JSON{"online": false}
	}
	return http.StatusOK, JSON{
		"status":      st,
		"memory":      units.BytesSize(float64(st.MemoryUsed)),
		"memoryLimit": units.BytesSize(float64(st.MemoryMax)),
		"uptime":      units.HumanDuration(time.Duration(st.UptimeSeconds) * time.Second),
		"players":     h.statusManager.Players(),
		"backups":     h.statusManager.Backups(),
	}
}

// URL /toasts/
func (h *Handler) toasts(req *Request) (int, interface{}) {
	return http.StatusOK, JSON{"toasts": h.notifier.Active()}
}

// URL /confirms/
func (h *Handler) confirms(req *Request) (int, interface{}) {
	return http.StatusOK, JSON{"confirms": h.notifier.Pending()}
}

// URL /confirms/:id POST
func (h *Handler) resolveConfirm(req *Request) (int, interface{}) {
	ID := req.URL.Query().Get(":id")
	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return http.StatusBadRequest, JSON{"error": err.Error()}
	}
	if err := h.notifier.Resolve(ID, body.Value); err != nil {
		return http.StatusConflict, JSON{"error": err.Error()}
	}
	return http.StatusOK, JSON{"id": ID}
}

// URL /execute/ POST
func (h *Handler) execute(req *Request) (int, interface{}) {
	var body struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return http.StatusBadRequest, JSON{"error": err.Error()}
	}
	if err := h.consoleManager.Execute(body.Command); err != nil {
		return http.StatusBadGateway, JSON{"error": err.Error()}
	}
	return http.StatusOK, JSON{"command": body.Command}
}

// Serve starts the local api once, no-op without an addr
func (h *Handler) Serve() {
	if h.config.API.Addr == "" || h.started.Bool() {
		return
	}
	h.started.Set()

	restfulAPIServer := pat.New()
	handlers := map[string]map[string]func(*Request) (int, interface{}){
		"GET": {
			"/version/":  h.version,
			"/profile/":  h.profile,
			"/logs/":     h.logs,
			"/jobs/":     h.listJobs,
			"/status/":   h.serverStatus,
			"/toasts/":   h.toasts,
			"/confirms/": h.confirms,
		},
		"POST": {
			"/jobs/":           h.submitJob,
			"/jobs/:id/cancel": h.cancelJob,
			"/confirms/:id":    h.resolveConfirm,
			"/execute/":        h.execute,
		},
	}
	for method, routes := range handlers {
		for route, handler := range routes {
			restfulAPIServer.Add(method, route, JSONWrapper(handler))
		}
	}
	restfulAPIServer.Add("GET", "/logs/export/", http.HandlerFunc(h.exportLogs))

	http.Handle("/", restfulAPIServer)
	http.Handle("/metrics", promhttp.Handler())

	log.Infof("[api] local api started at %s", h.config.API.Addr)
	go func() {
		if err := http.ListenAndServe(h.config.API.Addr, nil); err != nil {
			log.Errorf("[api] local api failed %s", err)
		}
	}()
}
