package render

import (
	"fmt"

	"github.com/TFMV/giantgraph/models"
)

// HTMLRenderer outputs a live page that polls the frame endpoint and draws
// it on a canvas
type HTMLRenderer struct{}

// Name returns the name of the renderer
func (r *HTMLRenderer) Name() string {
	return "HTML Renderer"
}

// Description returns a description of the renderer
func (r *HTMLRenderer) Description() string {
	return "Renders a live browser page that follows the running animation"
}

// Render creates the page. The frame only sizes the canvas; the page fetches
// every later frame itself.
func (r *HTMLRenderer) Render(frame *models.Frame, options *OutputOptions) ([]byte, error) {
	width, height := size(frame, options)
	frameURL := options.FrameURL
	if frameURL == "" {
		frameURL = "/api/frame"
	}
	hoverURL := options.HoverURL
	if hoverURL == "" {
		hoverURL = "/api/hover"
	}
	controlURL := options.ControlURL
	if controlURL == "" {
		controlURL = "/api"
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>giantgraph</title>
<style>
body { margin: 0; background: %[3]s; color: #808080; font-family: sans-serif; }
canvas { display: block; }
#controls { position: fixed; top: 8px; right: 8px; }
#controls button { background: none; color: #808080; border: 1px solid #404040; margin-left: 4px; cursor: pointer; }
#status { position: fixed; bottom: 8px; left: 8px; font-size: 11px; }
</style>
</head>
<body>
<canvas id="view" width="%[1]g" height="%[2]g"></canvas>
<div id="controls">
<button data-action="start">start</button>
<button data-action="pause">pause</button>
<button data-action="unpause">unpause</button>
<button data-action="end">end</button>
</div>
<div id="status"></div>
<script>
const canvas = document.getElementById("view");
const ctx = canvas.getContext("2d");
const status = document.getElementById("status");
let inflight = false;
let lastNumber = -1;

function draw(frame) {
  ctx.fillStyle = %[3]q;
  ctx.fillRect(0, 0, canvas.width, canvas.height);
  const sx = canvas.width / frame.viewport.width;
  const sy = canvas.height / frame.viewport.height;
  for (const e of frame.edges) {
    if (!e.visible) continue;
    ctx.globalAlpha = e.opacity;
    ctx.strokeStyle = e.color;
    ctx.lineWidth = e.width;
    ctx.beginPath();
    ctx.moveTo(e.x1 * sx, e.y1 * sy);
    ctx.lineTo(e.x2 * sx, e.y2 * sy);
    ctx.stroke();
  }
  for (const v of frame.vertices) {
    if (v.opacity <= 0) continue;
    ctx.globalAlpha = v.opacity;
    ctx.fillStyle = v.color;
    ctx.beginPath();
    ctx.arc(v.x * sx, v.y * sy, v.radius, 0, 2 * Math.PI);
    ctx.fill();
  }
  ctx.globalAlpha = 1;
  status.textContent = frame.state + " | frame " + frame.number + " | edges " + frame.edge_count + "/" + frame.max_edges;
}

function poll() {
  if (!inflight) {
    inflight = true;
    fetch(%[4]q)
      .then(r => r.ok ? r.json() : null)
      .then(frame => {
        if (frame && frame.number !== lastNumber) {
          lastNumber = frame.number;
          draw(frame);
        }
      })
      .catch(() => {})
      .finally(() => { inflight = false; });
  }
  requestAnimationFrame(poll);
}

let hoverPending = false;
canvas.addEventListener("pointermove", ev => {
  if (hoverPending) return;
  hoverPending = true;
  const rect = canvas.getBoundingClientRect();
  fetch(%[5]q, {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify({
      x: (ev.clientX - rect.left) * %[7]g / rect.width,
      y: (ev.clientY - rect.top) * %[8]g / rect.height
    })
  }).catch(() => {}).finally(() => { hoverPending = false; });
});

for (const b of document.querySelectorAll("#controls button")) {
  b.addEventListener("click", () => {
    fetch(%[6]q + "/" + b.dataset.action, { method: "POST" }).catch(() => {});
  });
}

requestAnimationFrame(poll);
</script>
</body>
</html>
`, width, height, options.Background, frameURL, hoverURL, controlURL,
		frame.Viewport.Width, frame.Viewport.Height)

	return []byte(page), nil
}
