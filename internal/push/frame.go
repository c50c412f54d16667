package push

import (
	"encoding/json"

	"github.com/mcoot/codebreaker/internal/api/response"
	"github.com/mcoot/codebreaker/internal/model"
)

// Frame is one encoded lobby snapshot. Payload is shared by every client
// and must not be modified.
type Frame struct {
	LobbyID model.LobbyID
	Version int64
	Payload []byte
}

// EncodeSnapshot renders a snapshot as the JSON clients receive
func EncodeSnapshot(snapshot *model.Lobby) (Frame, error) {
	payload, err := json.Marshal(response.LobbyFromModel(snapshot))
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		LobbyID: snapshot.ID,
		Version: snapshot.Version,
		Payload: payload,
	}, nil
}
