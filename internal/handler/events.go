package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"shopoholic/internal/guard"
	"shopoholic/internal/metrics"
)

const (
	eventsWriteWait  = 10 * time.Second
	eventsPongWait   = 60 * time.Second
	eventsPingPeriod = eventsPongWait * 9 / 10
)

// tabEvent - решение guard для открытой вкладки
type tabEvent struct {
	Outcome    string `json:"outcome"`
	Location   string `json:"location,omitempty"`
	ReturnPath string `json:"return_path,omitempty"`
}

// SessionEventsHandler - websocket открытой вкладки. Вкладка сообщает свой путь
// в ?path=, сервер присылает новое решение на каждое изменение сессии браузера:
// выход в соседней вкладке уводит эту со страницы, требующей входа.
func (h *Handler) SessionEventsHandler(w http.ResponseWriter, r *http.Request) {
	path := localPath(r.URL.Query().Get("path"), "")
	if path == "" {
		http.Error(w, "path required", http.StatusBadRequest)
		return
	}
	u, err := url.Parse(path)
	if err != nil {
		http.Error(w, "path required", http.StatusBadRequest)
		return
	}

	st, release, ok := h.Tabs.Existing(r)
	if !ok {
		http.Error(w, "unknown browser", http.StatusUnauthorized)
		return
	}
	defer release()

	if err := st.Load(r.Context()); err != nil {
		h.Log.Warn().Err(err).Msg("events: не удалось прочитать сессию")
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Debug().Err(err).Msg("events: upgrade")
		return
	}
	defer conn.Close()

	metrics.LiveTabs.Inc()
	defer metrics.LiveTabs.Dec()

	// важно только последнее решение
	updates := make(chan guard.Decision, 1)
	push := func(d guard.Decision) {
		for {
			select {
			case updates <- d:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	}

	stop := guard.Watch(st, h.Policy, Requirements().Requirement(u.Path), path, push)
	defer stop()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(eventsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(eventsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(eventsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case d := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
			ev := tabEvent{Outcome: d.Outcome.String(), Location: d.Location, ReturnPath: d.ReturnPath}
			if err := conn.WriteJSON(ev); err != nil {
				h.Log.Debug().Err(err).Msg("events: запись")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
