// Command hihimapsgui wraps the web frontend in a native window. It expects a
// running hihimaps server and connects to its address.
package main

import (
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	webview "github.com/webview/webview_go"
)

var addr = flag.String("addr", "127.0.0.1:8090", "address of the hihimaps server")

func main() {
	flag.Parse()

	// Webview requires the main thread.
	runtime.LockOSThread()

	// Run from the executable directory so relative paths resolve.
	exe, _ := os.Executable()
	_ = os.Chdir(filepath.Dir(exe))

	waitForServer("http://" + *addr + "/health")

	w := webview.New(false)
	defer w.Destroy()

	w.Init(`window.addEventListener('contextmenu', function(e) { e.preventDefault(); }, true);`)
	w.SetTitle("HihiMaps")
	w.SetSize(480, 860, webview.HintNone)
	w.Navigate("http://" + *addr + "/")
	w.Run()
}

// waitForServer polls the health endpoint briefly so the window doesn't open
// on a connection error during startup.
func waitForServer(url string) {
	client := &http.Client{Timeout: time.Second}
	for i := 0; i < 20; i++ {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(250 * time.Millisecond)
	}
}
