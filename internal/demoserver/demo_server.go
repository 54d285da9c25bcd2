package demoserver

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sort"
	"strings"
)

// DemoServer serves fixture sites with known favicon layouts. Sites are
// selected by the Host header, so one listener serves all of them.
type DemoServer struct {
	cfg   Config
	sites map[string]Site // host -> site
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config) *DemoServer {
	if cfg.Domain == "" {
		cfg.Domain = DefaultConfig().Domain
	}
	sites := make(map[string]Site)
	for _, s := range GetAllSites() {
		sites[s.Name+"."+cfg.Domain] = s
	}
	return &DemoServer{cfg: cfg, sites: sites}
}

// Host returns the identifier under which site name is served.
func (s *DemoServer) Host(name string) string {
	return name + "." + s.cfg.Domain
}

// Handler returns the HTTP handler for all fixture sites plus the control
// endpoints under /demo/.
func (s *DemoServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/demo/control", s.controlPanelHandler)
	mux.HandleFunc("/demo/sites", s.sitesHandler)
	mux.HandleFunc("/", s.siteHandler)
	return mux
}

// Start starts the demo server.
func (s *DemoServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	fmt.Printf("Demo server starting on http://localhost%s\n", addr)
	fmt.Printf("Control panel at http://localhost%s/demo/control\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// lookup strips the port and a leading www. from host.
func (s *DemoServer) lookup(host string) (Site, bool) {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	site, ok := s.sites[host]
	return site, ok
}

func (s *DemoServer) siteHandler(w http.ResponseWriter, r *http.Request) {
	site, ok := s.lookup(r.Host)
	if !ok {
		http.NotFound(w, r)
		return
	}
	res, ok := site.Resources[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}

	if res.Location != "" {
		status := res.Status
		if status == 0 {
			status = http.StatusFound
		}
		http.Redirect(w, r, res.Location, status)
		return
	}

	if res.ContentType != "" {
		w.Header().Set("Content-Type", res.ContentType)
	}
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(res.Body))
}

type siteInfo struct {
	Host        string `json:"host"`
	Description string `json:"description"`
	Expect      string `json:"expect"`
}

func (s *DemoServer) infos() []siteInfo {
	out := make([]siteInfo, 0, len(s.sites))
	for host, site := range s.sites {
		out = append(out, siteInfo{Host: host, Description: site.Description, Expect: site.Expect})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Host < out[j].Host })
	return out
}

// sitesHandler lists the fixture hosts and their expected outcomes.
func (s *DemoServer) sitesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.infos())
}

// controlPanelHandler renders the fixture list as HTML.
func (s *DemoServer) controlPanelHandler(w http.ResponseWriter, r *http.Request) {
	tmpl := template.Must(template.New("control").Parse(controlPanelHTML))
	data := struct {
		Sites []siteInfo
		Port  int
	}{
		Sites: s.infos(),
		Port:  s.cfg.Port,
	}
	w.Header().Set("Content-Type", "text/html")
	_ = tmpl.Execute(w, data)
}

const controlPanelHTML = `<!DOCTYPE html>
<html>
<head>
    <title>favicond demo sites</title>
    <style>
        body { font-family: sans-serif; margin: 2em; }
        table { border-collapse: collapse; }
        td, th { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
        code { background: #f4f4f4; }
    </style>
</head>
<body>
    <h1>favicond demo sites</h1>
    <p>Point a resolver at these hosts (for example via /etc/hosts) on port {{.Port}}.</p>
    <table>
        <tr><th>Host</th><th>Layout</th><th>Expected</th></tr>
        {{range .Sites}}
        <tr><td><code>{{.Host}}</code></td><td>{{.Description}}</td><td>{{.Expect}}</td></tr>
        {{end}}
    </table>
</body>
</html>`
