package gateway

import (
  "context"
  "encoding/base64"
  "encoding/json"
  "errors"
  "net/http"
  "strings"
  "sync"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/gorilla/websocket"
  "github.com/dolbomcare/carelog-backend/internal/apperr"
  "github.com/dolbomcare/carelog-backend/internal/clients/stt"
  "github.com/dolbomcare/carelog-backend/internal/logger"
  "github.com/dolbomcare/carelog-backend/internal/services"
)

// Inbound events.
const (
  eventStartRecording = "startRecording"
  eventAudioData      = "audioData"
  eventStopRecording  = "stopRecording"
)

// Outbound events.
const (
  eventRecordingStarted = "recordingStarted"
  eventTranscription    = "transcription"
  eventRecordingStopped = "recordingStopped"
  eventError            = "error"
)

type envelope struct {
  Event string          `json:"event"`
  Data  json.RawMessage `json:"data"`
}

type startRecordingData struct {
  ClientID uuid.UUID `json:"clientId"`
}

type audioData struct {
  ClientID  uuid.UUID `json:"clientId"`
  Audio     string    `json:"audio"`
  Timestamp int64     `json:"timestamp"`
}

// Gateway owns the websocket endpoint for voice capture sessions. Each
// connection gets its own session in the registry; fragments buffered there
// are reassembled and persisted when the client stops recording.
type Gateway struct {
  log            *logger.Logger
  upgrader       websocket.Upgrader
  registry       *Registry
  sttClient      stt.Client
  journalService services.JournalService
  authService    services.AuthService
}

func NewGateway(
  log *logger.Logger,
  registry *Registry,
  sttClient stt.Client,
  journalService services.JournalService,
  authService services.AuthService,
) *Gateway {
  return &Gateway{
    log: log.With("service", "Gateway"),
    upgrader: websocket.Upgrader{
      ReadBufferSize:  1 << 16,
      WriteBufferSize: 1 << 16,
      CheckOrigin:     func(r *http.Request) bool { return true },
    },
    registry:       registry,
    sttClient:      sttClient,
    journalService: journalService,
    authService:    authService,
  }
}

// conn wraps a websocket connection with a write lock; gorilla allows only
// one concurrent writer.
type conn struct {
  ws *websocket.Conn
  mu sync.Mutex
}

func (c *conn) writeEvent(event string, data interface{}) error {
  c.mu.Lock()
  defer c.mu.Unlock()
  return c.ws.WriteJSON(map[string]interface{}{"event": event, "data": data})
}

func (c *conn) writeError(message string) {
  _ = c.writeEvent(eventError, gin.H{"message": message})
}

// HandleJournalSocket authenticates the handshake, upgrades the connection
// and runs the event loop until the client disconnects.
func (g *Gateway) HandleJournalSocket(c *gin.Context) {
  token := c.Query("token")
  if token == "" {
    token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
  }
  identity, err := g.authService.VerifyToken(token)
  if err != nil {
    g.log.Warn("Websocket handshake rejected", "error", err)
    c.AbortWithStatus(http.StatusUnauthorized)
    return
  }

  ws, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
  if err != nil {
    g.log.Error("Websocket upgrade failed", "error", err)
    return
  }
  connID := uuid.New().String()
  session := g.registry.GetOrCreate(connID)
  g.log.Info("Voice session connected", "connID", connID, "memberID", identity.MemberID)

  defer func() {
    // A disconnect mid-recording drops the buffered fragments silently.
    g.registry.Remove(connID)
    ws.Close()
    g.log.Info("Voice session disconnected", "connID", connID)
  }()

  wc := &conn{ws: ws}
  ctx := c.Request.Context()
  for {
    _, raw, err := ws.ReadMessage()
    if err != nil {
      if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
        g.log.Warn("Websocket read error", "connID", connID, "error", err)
      }
      return
    }
    var env envelope
    if err := json.Unmarshal(raw, &env); err != nil {
      wc.writeError("invalid message")
      continue
    }
    g.dispatch(ctx, wc, session, identity.MemberID, env)
  }
}

func (g *Gateway) dispatch(ctx context.Context, wc *conn, session *Session, memberID uuid.UUID, env envelope) {
  switch env.Event {
  case eventStartRecording:
    g.handleStart(wc, session, memberID, env.Data)
  case eventAudioData:
    g.handleAudio(ctx, wc, session, memberID, env.Data)
  case eventStopRecording:
    g.handleStop(ctx, wc, session, env.Data)
  default:
    wc.writeError("unknown event: " + env.Event)
  }
}

// handleStart resets the buffer; the client id may arrive here or on a later
// audioData/stopRecording payload.
func (g *Gateway) handleStart(wc *conn, session *Session, memberID uuid.UUID, raw json.RawMessage) {
  var data startRecordingData
  if len(raw) > 0 {
    _ = json.Unmarshal(raw, &data)
  }
  session.StartRecording(data.ClientID, memberID)
  _ = wc.writeEvent(eventRecordingStarted, gin.H{"clientId": data.ClientID})
}

func (g *Gateway) handleAudio(ctx context.Context, wc *conn, session *Session, memberID uuid.UUID, raw json.RawMessage) {
  var data audioData
  if err := json.Unmarshal(raw, &data); err != nil {
    wc.writeError("invalid audioData payload")
    return
  }
  audio, err := base64.StdEncoding.DecodeString(data.Audio)
  if err != nil {
    wc.writeError("audio must be base64 encoded")
    return
  }

  if !session.Recording() {
    // Outside an active recording a chunk is a complete take: transcribe
    // and persist it in one step.
    g.handleSingleShot(ctx, wc, memberID, data.ClientID, data.Timestamp, audio)
    return
  }

  session.EnsureClient(data.ClientID)
  transcript, err := g.sttClient.Transcribe(ctx, audio)
  if err != nil {
    g.log.Warn("Fragment transcription failed", "timestamp", data.Timestamp, "error", err)
    wc.writeError("transcription failed for fragment")
    transcript = ""
  } else {
    _ = wc.writeEvent(eventTranscription, gin.H{"text": transcript, "timestamp": data.Timestamp})
  }
  session.AppendFragment(Fragment{Timestamp: data.Timestamp, Audio: audio, Transcript: transcript})
}

// handleSingleShot treats one complete payload as a session of exactly one
// fragment so both modes run the same reassembly path.
func (g *Gateway) handleSingleShot(ctx context.Context, wc *conn, memberID, clientID uuid.UUID, timestamp int64, audio []byte) {
  if clientID == uuid.Nil {
    wc.writeError("audioData outside a recording requires a clientId")
    return
  }
  transcript, err := g.sttClient.Transcribe(ctx, audio)
  if err != nil {
    g.log.Error("Single-shot transcription failed", "error", err)
    wc.writeError(err.Error())
    return
  }
  _ = wc.writeEvent(eventTranscription, gin.H{"text": transcript, "timestamp": timestamp})

  scratch := &Session{}
  scratch.StartRecording(clientID, memberID)
  scratch.AppendFragment(Fragment{Timestamp: timestamp, Audio: audio, Transcript: transcript})
  g.finishSession(ctx, wc, scratch)
}

func (g *Gateway) handleStop(ctx context.Context, wc *conn, session *Session, raw json.RawMessage) {
  var data startRecordingData
  if len(raw) > 0 {
    _ = json.Unmarshal(raw, &data)
  }
  session.EnsureClient(data.ClientID)
  g.finishSession(ctx, wc, session)
}

// finishSession reassembles, persists and clears. Clearing is unconditional
// so a failed persist never leaks fragments into the next recording.
func (g *Gateway) finishSession(ctx context.Context, wc *conn, session *Session) {
  defer session.Clear()

  audio, transcript, err := session.Assemble()
  if err != nil {
    message := err.Error()
    if errors.Is(err, apperr.ErrNoAudioRecorded) {
      message = "no audio recorded"
    } else if errors.Is(err, apperr.ErrEmptyTranscript) {
      message = "no speech detected in recording"
    }
    _ = wc.writeEvent(eventRecordingStopped, gin.H{"success": false, "error": message})
    return
  }

  journal, err := g.journalService.CreateJournal(ctx, services.CreateJournalInput{
    ClientID:     session.ClientID(),
    CareWorkerID: session.CareWorkerID(),
    Audio:        audio,
    Transcript:   transcript,
  })
  if err != nil {
    g.log.Error("Failed to persist recorded journal", "error", err)
    _ = wc.writeEvent(eventRecordingStopped, gin.H{"success": false, "error": err.Error()})
    return
  }
  _ = wc.writeEvent(eventRecordingStopped, gin.H{
    "success":    true,
    "journalId":  journal.ID,
    "transcript": journal.Transcript,
  })
}
