package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/playspan/playspan/log"
)

// Event is a notification pushed by mpv. Name is the property for
// "property-change" events and the event type otherwise.
type Event struct {
	Name string
	Data json.RawMessage
}

// Float decodes the event payload as a number. It reports false for null payloads.
func (e Event) Float() (float64, bool) {
	var v *float64
	if err := json.Unmarshal(e.Data, &v); err != nil || v == nil {
		return 0, false
	}
	return *v, true
}

// EventCallback is called from the listener goroutine for every event.
type EventCallback func(Event)

// ObservedProperties are the properties the listener subscribes to.
var ObservedProperties = []string{"time-pos", "duration", "chapter-list", "media-title", "eof-reached"}

// EventListener delivers mpv events over a persistent IPC connection.
type EventListener struct {
	socketPath string
	conn       net.Conn
	callback   EventCallback
	done       chan struct{}
	mu         sync.Mutex
	listening  bool
}

// NewEventListener creates a new event listener for the given socket.
func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
		done:       make(chan struct{}),
	}
}

// Start observes ObservedProperties and starts the read loop.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	// observations are bound to the connection that requested them
	conn, err := dial(el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range ObservedProperties {
		payload, err := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if err != nil {
			_ = conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			_ = conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true

	go el.readLoop()

	log.WithField("socket", el.socketPath).Infof("mpv event listener started, observing %v", ObservedProperties)
	return nil
}

// Done is closed when the read loop ends.
func (el *EventListener) Done() <-chan struct{} {
	return el.done
}

// Stop terminates the event listener.
func (el *EventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	el.listening = false
	_ = el.conn.Close()
}

func (el *EventListener) readLoop() {
	defer close(el.done)

	scanner := bufio.NewScanner(el.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		el.processEvent(scanner.Bytes())
	}

	el.mu.Lock()
	stopped := !el.listening
	el.listening = false
	el.mu.Unlock()

	if err := scanner.Err(); err != nil && !stopped && !errors.Is(err, net.ErrClosed) {
		log.Warnf("event listener read error: %v", err)
	}
}

// processEvent dispatches a single line. Command replies and malformed lines are dropped.
func (el *EventListener) processEvent(line []byte) {
	var msg struct {
		Event string          `json:"event"`
		Name  string          `json:"name"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(line, &msg); err != nil || msg.Event == "" || el.callback == nil {
		return
	}

	if msg.Event == "property-change" {
		if msg.Name != "" {
			el.callback(Event{Name: msg.Name, Data: msg.Data})
		}
		return
	}

	el.callback(Event{Name: msg.Event, Data: json.RawMessage(line)})
}
