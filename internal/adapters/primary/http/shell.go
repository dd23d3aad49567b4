package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
)

// shellData is the payload the shell page template renders from.
type shellData struct {
	Title     string
	ThemeCSS  template.CSS
	Slides    []ports.RenderedSlide
	BootState template.JS
	NotesOn   bool
	TimerOn   bool
	NumbersOn bool
	Blackout  bool
}

// handleShell serves the presentation page: every slide pre-rendered into
// the document, plus the client runtime that binds navigation, the update
// stream, and the chrome widgets.
func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	deck := s.session.Deck()
	rendered, err := s.renderer.RenderDeck(r.Context(), deck)
	if err != nil {
		s.logger.Error("Rendering deck for shell: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	snap := s.session.Snapshot()
	boot, err := json.Marshal(snap)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	title := "Presentation"
	if sl := deck.SlideAt(0); sl != nil && sl.Title() != "" {
		title = sl.Title()
	}

	data := shellData{
		Title:     title,
		ThemeCSS:  themeCSS(snap.Theme),
		Slides:    rendered,
		BootState: template.JS(boot), // #nosec G203 -- marshaled server-side state
		NotesOn:   snap.Settings.NotesVisible,
		TimerOn:   snap.Settings.TimerVisible,
		NumbersOn: snap.Settings.SlideNumbersVisible,
		Blackout:  snap.Blackout,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := shellTemplate.Execute(w, data); err != nil {
		s.logger.Error("Executing shell template: %v", err)
	}
}

// themeCSS renders a theme's variables as a :root declaration block. Unknown
// variable names pass through so custom themes can style their own hooks.
func themeCSS(t entities.Theme) template.CSS {
	var sb strings.Builder
	sb.WriteString(":root{")

	names := make([]string, 0, len(t.Vars))
	for name := range t.Vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := t.Vars[name]
		if name == "fontFamily" {
			fmt.Fprintf(&sb, "--font-family:%s;", sanitizeCSSValue(value))
			continue
		}
		if !strings.HasPrefix(name, "--") {
			continue
		}
		fmt.Fprintf(&sb, "%s:%s;", sanitizeCSSName(name), sanitizeCSSValue(value))
	}
	sb.WriteString("}")
	return template.CSS(sb.String()) // #nosec G203 -- names and values sanitized above
}

func sanitizeCSSName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, name)
}

func sanitizeCSSValue(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>':
			return -1
		default:
			return r
		}
	}, value)
}

var shellTemplate = template.Must(template.New("shell").Parse(shellPage))

const shellPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
{{.ThemeCSS}}
*{box-sizing:border-box}
html,body{height:100%;margin:0}
body{background:var(--bg,#ffffff);color:var(--fg,#121212);font-family:var(--font-family,system-ui,sans-serif);overflow:hidden}
.stage{position:relative;width:100vw;height:100vh}
.slide{position:absolute;inset:0;display:none;flex-direction:column;padding:4vh 5vw;background:var(--card,var(--bg,#ffffff))}
.slide.active{display:flex}
.slide.fullbleed{padding:0}
.slide h1.title{margin:0 0 .3em;font-size:2.6em;color:var(--accent,#0aa3b8)}
.slide h2.subtitle{margin:0 0 1em;font-size:1.3em;font-weight:400;color:var(--muted,#808080)}
.slide .body{flex:1 1 auto;min-height:0;font-size:1.15em;line-height:1.5}
.slide ul{margin:.3em 0;padding-left:1.2em}
.slide img{max-width:100%;max-height:100%;object-fit:contain}
.slide iframe{width:100%;height:100%;border:0}
.slide video{max-width:100%;max-height:100%}
.logo-mark{position:absolute;top:2vh;right:2vw;height:6vh;width:auto;z-index:5}
.footer{position:absolute;left:0;right:0;bottom:0;display:flex;justify-content:space-between;padding:1vh 2vw;font-size:.85em;color:var(--muted,#808080)}
.footer .timer{font-variant-numeric:tabular-nums}
[data-timer]{display:none}
body.timer-on [data-timer]{display:inline}
.slide-number{position:absolute;right:2vw;bottom:4vh;font-size:.8em;color:var(--muted,#808080);display:none;z-index:6}
body.numbers-on .slide-number{display:block}
.columns{display:flex;gap:2vw;flex:1 1 auto;min-height:0}
.columns>div{flex:1 1 0;min-width:0}
.counter{position:fixed;right:2vw;bottom:4vh;font-size:.85em;color:var(--muted,#808080);z-index:20}
.progress{position:fixed;left:0;bottom:0;height:3px;width:100%;background:var(--line,#d9dee5);z-index:20}
.progress .bar{height:100%;width:0;background:var(--accent,#0aa3b8);transition:width .2s}
.notes-panel{position:fixed;left:0;right:0;bottom:0;max-height:28vh;overflow:auto;background:rgba(0,0,0,.78);color:#fff;padding:1.5vh 3vw;font-size:.95em;display:none;z-index:30}
.notes-panel.visible{display:block}
.blackout-cover{position:fixed;inset:0;background:#000;display:none;z-index:90}
body.blackout .blackout-cover{display:block}
.help-overlay{position:fixed;inset:0;background:rgba(0,0,0,.82);color:#fff;display:none;align-items:center;justify-content:center;z-index:95}
.help-overlay.visible{display:flex}
.help-overlay table{border-collapse:collapse}
.help-overlay td{padding:.25em 1em}
.help-overlay kbd{background:#333;border-radius:4px;padding:.1em .5em}
body.overview .stage{display:grid;grid-template-columns:repeat(4,1fr);gap:1vw;padding:2vh 2vw;height:auto;overflow:auto}
body.overview .slide{position:relative;display:flex;height:22vh;cursor:pointer;border:2px solid var(--line,#d9dee5);font-size:.4em;overflow:hidden}
body.overview .slide.active{border-color:var(--accent,#0aa3b8)}
.mm-svg{width:100%;height:100%;display:block;cursor:grab}
.mm-svg:active{cursor:grabbing}
[data-pannable] .body{overflow:hidden;cursor:grab}
</style>
</head>
<body class="{{if .Blackout}}blackout {{end}}{{if .TimerOn}}timer-on {{end}}{{if .NumbersOn}}numbers-on{{end}}">
<div class="stage" id="stage">
{{range .Slides}}<section class="slide {{.Classes}}" data-index="{{.Index}}">{{.HTML}}<div class="slide-number"></div></section>
{{end}}</div>
<div class="counter" id="counter"></div>
<div class="progress"><div class="bar" id="progress-bar"></div></div>
<div class="notes-panel {{if .NotesOn}}visible{{end}}" id="notes"></div>
<div class="blackout-cover"></div>
<div class="help-overlay" id="help"><table>
<tr><td><kbd>&rarr;</kbd> <kbd>Space</kbd></td><td>Next slide</td></tr>
<tr><td><kbd>&larr;</kbd> <kbd>Shift+Space</kbd></td><td>Previous slide</td></tr>
<tr><td><kbd>Home</kbd> / <kbd>End</kbd></td><td>First / last slide</td></tr>
<tr><td><kbd>F</kbd></td><td>Fullscreen</td></tr>
<tr><td><kbd>B</kbd> / <kbd>.</kbd></td><td>Blackout</td></tr>
<tr><td><kbd>T</kbd> / <kbd>R</kbd></td><td>Toggle / reset timer</td></tr>
<tr><td><kbd>O</kbd></td><td>Slide overview</td></tr>
<tr><td><kbd>N</kbd></td><td>Speaker notes</td></tr>
<tr><td><kbd>?</kbd></td><td>This help</td></tr>
</table></div>
<script>
(function(){
"use strict";
var state = {{.BootState}};
var slides = Array.prototype.slice.call(document.querySelectorAll('.slide'));
var ws = null;
var suppressHash = false;
var timerBaseMs = 0, timerBaseAt = Date.now(), timerRunning = false;

function clockLabel(ms){
  var s = Math.max(0, Math.floor(ms/1000));
  var mm = String(Math.floor(s/60)).padStart(2,'0');
  var ss = String(s%60).padStart(2,'0');
  return mm+':'+ss;
}
function parseClock(label){
  var m = /^(\d+):(\d\d)$/.exec(label||'');
  return m ? (parseInt(m[1],10)*60 + parseInt(m[2],10))*1000 : 0;
}

function reconcileMedia(){
  slides.forEach(function(el, i){
    var active = i === state.view.index;
    el.querySelectorAll('video,audio').forEach(function(media){
      if(active){
        if(media.autoplay || media.dataset.autoplay === 'true'){
          var p = media.play();
          if(p && p.catch) p.catch(function(){});
        }
      } else {
        try{ media.pause(); }catch(_){}
      }
    });
  });
}

function applyView(view){
  state.view = view;
  slides.forEach(function(el, i){ el.classList.toggle('active', i === view.index); });
  document.getElementById('counter').textContent = view.counter;
  document.getElementById('progress-bar').style.width = view.progressWidth;
  document.getElementById('notes').textContent = view.notes || '';
  timerBaseMs = parseClock(view.timerLabel);
  timerBaseAt = Date.now();
  timerRunning = view.timerRunning;
  updateTimerLabels();
  reconcileMedia();
  if(document.body.classList.contains('overview')){
    document.body.classList.remove('overview');
  }
  if(location.hash !== view.fragment){
    // An unchanged hash fires no hashchange, which would leave the flag
    // armed and eat the next manual hash edit.
    suppressHash = true;
    location.hash = view.fragment;
  }
}

function updateTimerLabels(){
  var ms = timerBaseMs + (timerRunning ? Date.now() - timerBaseAt : 0);
  var label = clockLabel(ms);
  document.querySelectorAll('[data-timer]').forEach(function(el){ el.textContent = label; });
}
setInterval(updateTimerLabels, 250);

function applyTheme(theme, broadcast){
  state.theme = theme;
  var root = document.documentElement;
  Object.keys(theme.vars || {}).forEach(function(name){
    if(name === 'fontFamily'){ root.style.setProperty('--font-family', theme.vars[name]); return; }
    if(name.indexOf('--') === 0) root.style.setProperty(name, theme.vars[name]);
  });
  // Push the palette into every embedded document
  document.querySelectorAll('iframe').forEach(function(frame){
    try{ frame.contentWindow.postMessage({__mmTheme: broadcast}, '*'); }catch(_){}
  });
}

function applySettings(settings){
  if(typeof settings.notesVisible === 'boolean'){
    state.settings.notesVisible = settings.notesVisible;
    document.getElementById('notes').classList.toggle('visible', settings.notesVisible);
  }
  if(typeof settings.timerVisible === 'boolean'){
    state.settings.timerVisible = settings.timerVisible;
    document.body.classList.toggle('timer-on', settings.timerVisible);
  }
  if(typeof settings.slideNumbersVisible === 'boolean'){
    state.settings.slideNumbersVisible = settings.slideNumbersVisible;
    document.body.classList.toggle('numbers-on', settings.slideNumbersVisible);
  }
  if(typeof settings.blackout === 'boolean'){
    document.body.classList.toggle('blackout', settings.blackout);
  }
}

function chromeAction(action){
  if(action === 'fullscreen'){
    if(document.fullscreenElement){ document.exitFullscreen().catch(function(){}); }
    else { document.documentElement.requestFullscreen().catch(function(){}); }
  } else if(action === 'overview'){
    document.body.classList.toggle('overview');
  } else if(action === 'help'){
    document.getElementById('help').classList.toggle('visible');
  }
}

function handleEvent(evt){
  switch(evt.type){
    case 'connected':
      if(evt.data && evt.data.view) applyView(evt.data.view);
      break;
    case 'slide_changed':
    case 'timer_changed':
      if(evt.data) applyView(evt.data);
      break;
    case 'deck_replaced':
      // Slide markup is rendered server-side, so a new deck needs a fresh page.
      window.location.reload();
      break;
    case 'theme_changed':
      if(evt.data) applyTheme(evt.data.theme, evt.data.broadcast);
      break;
    case 'settings_changed':
      if(evt.data) applySettings(evt.data);
      break;
    case 'chrome_action':
      if(evt.data) chromeAction(evt.data.action);
      break;
  }
}

function sendKey(key, shift, alt, ctrl){
  var msg = {__pptNav:true, key:key, shiftKey:!!shift, altKey:!!alt, ctrlKey:!!ctrl};
  if(ws && ws.readyState === WebSocket.OPEN){
    ws.send(JSON.stringify(msg));
  } else {
    fetch('/api/navigate', {method:'POST', headers:{'Content-Type':'application/json'}, body:JSON.stringify(msg)}).catch(function(){});
  }
}

function connect(){
  var proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
  ws = new WebSocket(proto + '//' + location.host + '/ws');
  ws.onmessage = function(e){
    try{ handleEvent(JSON.parse(e.data)); }catch(_){}
  };
  ws.onclose = function(){ setTimeout(connect, 1000); };
}
connect();

document.addEventListener('keydown', function(e){
  if(e.target && /INPUT|TEXTAREA|SELECT/.test(e.target.tagName)) return;
  if(['ArrowRight','ArrowLeft','PageDown','PageUp',' ','Spacebar','Backspace','Home','End'].indexOf(e.key) >= 0) e.preventDefault();
  sendKey(e.key, e.shiftKey, e.altKey, e.ctrlKey);
});

// Key presses inside embedded documents arrive via postMessage
window.addEventListener('message', function(e){
  var m = e.data;
  if(m && m.__pptNav) sendKey(m.key, m.shift || m.shiftKey, m.alt || m.altKey, m.ctrl || m.ctrlKey);
});

// A position fragment in the URL wins over the restored index
(function(){
  var m = /^#(\d+)$/.exec(location.hash);
  if(m){
    var target = parseInt(m[1],10) - 1;
    if(target >= 0 && target !== state.view.index){
      fetch('/api/navigate', {method:'POST', headers:{'Content-Type':'application/json'}, body:JSON.stringify({index:target})}).catch(function(){});
      state.view.index = target;
    }
  }
})();
window.addEventListener('hashchange', function(){
  if(suppressHash){ suppressHash = false; return; }
  var m = /^#(\d+)$/.exec(location.hash);
  if(m) fetch('/api/navigate', {method:'POST', headers:{'Content-Type':'application/json'}, body:JSON.stringify({index:parseInt(m[1],10)-1})}).catch(function(){});
});

// Overview click jumps to the clicked slide
document.getElementById('stage').addEventListener('click', function(e){
  if(!document.body.classList.contains('overview')) return;
  var el = e.target.closest('.slide');
  if(!el) return;
  fetch('/api/navigate', {method:'POST', headers:{'Content-Type':'application/json'}, body:JSON.stringify({index:parseInt(el.dataset.index,10)})}).catch(function(){});
});

// Drag panning for pannable bodies and inline mindmap viewports
(function(){
  var drag = null;
  document.addEventListener('mousedown', function(e){
    var svg = e.target.closest('.mm-svg');
    var pan = e.target.closest('[data-pannable]');
    if(!svg && !pan) return;
    var target = svg ? svg.querySelector('.mm-viewport') : pan.querySelector('.body');
    if(!target) return;
    var t = target.dataset;
    drag = {target:target, x:e.clientX, y:e.clientY, ox:parseFloat(t.ox||0), oy:parseFloat(t.oy||0), svg:!!svg};
    e.preventDefault();
  });
  document.addEventListener('mousemove', function(e){
    if(!drag) return;
    var nx = drag.ox + (e.clientX - drag.x);
    var ny = drag.oy + (e.clientY - drag.y);
    drag.target.dataset.ox = nx; drag.target.dataset.oy = ny;
    var scale = parseFloat(drag.target.dataset.scale || 1);
    drag.target.setAttribute ?
      drag.target.setAttribute('transform','translate('+nx+','+ny+') scale('+scale+')') :
      (drag.target.style.transform = 'translate('+nx+'px,'+ny+'px)');
  });
  document.addEventListener('mouseup', function(){ drag = null; });
  document.addEventListener('wheel', function(e){
    var svg = e.target.closest('.mm-svg');
    if(!svg) return;
    var vp = svg.querySelector('.mm-viewport');
    if(!vp) return;
    e.preventDefault();
    var scale = parseFloat(vp.dataset.scale || 1);
    scale *= e.deltaY < 0 ? 1.1 : 0.9;
    scale = Math.min(4, Math.max(0.25, scale));
    vp.dataset.scale = scale;
    var ox = parseFloat(vp.dataset.ox || 0), oy = parseFloat(vp.dataset.oy || 0);
    vp.setAttribute('transform','translate('+ox+','+oy+') scale('+scale+')');
  }, {passive:false});
})();

// Calculator widgets: expression entry with a strict character whitelist
(function(){
  document.addEventListener('click', function(e){
    var btn = e.target.closest('.calc-widget .calc-grid button');
    if(!btn) return;
    var display = btn.closest('.calc-widget').querySelector('.calc-display');
    if(!display) return;
    var expr = display.value;
    if(btn.dataset.act === 'clear'){ expr = ''; }
    else if(btn.dataset.act === 'back'){ expr = expr.slice(0, -1); }
    else if(btn.dataset.act === 'eq'){
      if(/^[0-9+\-*/(). ]*$/.test(expr) && expr){
        try{ expr = String(Function('"use strict";return ('+expr+')')()); }
        catch(_){ expr = 'Error'; }
      }
    }
    else if(btn.dataset.k){ expr = (expr === 'Error' ? '' : expr) + btn.dataset.k; }
    display.value = expr;
  });
})();

slides.forEach(function(el, i){
  var badge = el.querySelector('.slide-number');
  if(badge) badge.textContent = (i + 1) + ' / ' + slides.length;
});

applyView(state.view);
applySettings(state.settings);
})();
</script>
</body>
</html>
`
