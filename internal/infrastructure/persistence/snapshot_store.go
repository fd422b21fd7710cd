package persistence

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"fantasy_trades/internal/domain"
	"fantasy_trades/internal/domain/entity"
	"fantasy_trades/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	fieldRound   = "round"
	fieldPlayers = "players"
	fieldTrades  = "trades"
)

// SnapshotStore reads and rewrites a season snapshot document: a JSON
// object whose roundsKey member is the array of round objects. Members it
// does not interpret are carried through unchanged.
type SnapshotStore struct {
	path      string
	roundsKey string
}

func NewSnapshotStore(path, roundsKey string) (*SnapshotStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("filepath.Abs: %w", err)
	}

	return &SnapshotStore{
		path:      abs,
		roundsKey: roundsKey,
	}, nil
}

func (s *SnapshotStore) Dataset() string {
	return s.path
}

func (s *SnapshotStore) Load(_ context.Context) (entity.Season, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entity.Season{}, domain.WrapError(err, errcodes.SnapshotNotFound, "snapshot not found")
		}
		return entity.Season{}, domain.WrapError(err, errcodes.InternalServerError, "failed to read snapshot")
	}

	return decodeSeason(data, s.roundsKey)
}

// Save replaces the document atomically: the new content is written to a
// temporary file in the same directory and renamed over the original, so a
// failure leaves the previous document intact.
func (s *SnapshotStore) Save(_ context.Context, season entity.Season) error {
	data, err := encodeSeason(season, s.roundsKey)
	if err != nil {
		return err
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}

	if err := writeFileAtomic(s.path, data, mode); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to write snapshot")
	}

	return nil
}

func writeFileAtomic(path string, data []byte, mode fs.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("tmp.Write: %w", err)
	}

	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("tmp.Chmod: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("tmp.Sync: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	return nil
}

func decodeSeason(data []byte, roundsKey string) (entity.Season, error) {
	var document map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &document); err != nil {
		return entity.Season{}, malformed(err, "document is not a JSON object")
	}

	rawRounds, ok := document[roundsKey]
	if !ok {
		return entity.Season{}, domain.Errorf(errcodes.MalformedSnapshot, "%s: missing", roundsKey)
	}

	var items []jsoniter.RawMessage
	if err := json.Unmarshal(rawRounds, &items); err != nil || items == nil {
		return entity.Season{}, malformed(err, fmt.Sprintf("%s: not an array", roundsKey))
	}

	season := entity.Season{
		Rounds: make([]entity.RoundSnapshot, 0, len(items)),
		Extra:  rawFields(document, roundsKey),
	}

	for i, item := range items {
		round, err := decodeRound(item, fmt.Sprintf("%s[%d]", roundsKey, i))
		if err != nil {
			return entity.Season{}, err
		}

		season.Rounds = append(season.Rounds, round)
	}

	return season, nil
}

func decodeRound(data []byte, path string) (entity.RoundSnapshot, error) {
	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return entity.RoundSnapshot{}, malformed(err, path+": not an object")
	}

	var round entity.RoundSnapshot

	rawRound, ok := fields[fieldRound]
	if !ok {
		return entity.RoundSnapshot{}, domain.Errorf(errcodes.MalformedSnapshot, "%s.%s: missing", path, fieldRound)
	}

	if err := json.Unmarshal(rawRound, &round.Round); err != nil {
		return entity.RoundSnapshot{}, malformed(err, path+"."+fieldRound+": not an integer")
	}

	rawPlayers, ok := fields[fieldPlayers]
	if !ok {
		return entity.RoundSnapshot{}, domain.Errorf(errcodes.MalformedSnapshot, "%s.%s: missing", path, fieldPlayers)
	}

	if err := json.Unmarshal(rawPlayers, &round.Players); err != nil || round.Players == nil {
		return entity.RoundSnapshot{}, malformed(err, path+"."+fieldPlayers+": not an array of strings")
	}

	// jsoniter hands a null member over as an empty RawMessage.
	if rawTrades, ok := fields[fieldTrades]; ok && !isNull(rawTrades) {
		trades, err := decodeTrades(rawTrades, path+"."+fieldTrades)
		if err != nil {
			return entity.RoundSnapshot{}, err
		}

		round.Trades = trades
	}

	round.Extra = rawFields(fields, fieldRound, fieldPlayers, fieldTrades)

	return round, nil
}

func decodeTrades(data []byte, path string) (*entity.Trades, error) {
	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, malformed(err, path+": not an object")
	}

	trades := entity.EmptyTrades()

	for key, dest := range map[string]*[]string{
		"tradedOut": &trades.TradedOut,
		"tradedIn":  &trades.TradedIn,
	} {
		raw, ok := fields[key]
		if !ok {
			continue
		}

		var list []string
		if err := json.Unmarshal(raw, &list); err != nil || list == nil {
			return nil, malformed(err, path+"."+key+": not an array of strings")
		}

		*dest = list
	}

	return trades, nil
}

func encodeSeason(season entity.Season, roundsKey string) ([]byte, error) {
	document := make(map[string]jsoniter.RawMessage, len(season.Extra)+1)
	for k, v := range season.Extra {
		document[k] = v
	}

	rounds := make([]map[string]jsoniter.RawMessage, 0, len(season.Rounds))

	for _, r := range season.Rounds {
		fields := make(map[string]jsoniter.RawMessage, len(r.Extra)+3)
		for k, v := range r.Extra {
			fields[k] = v
		}

		var err error

		if fields[fieldRound], err = json.Marshal(r.Round); err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to encode round")
		}

		if fields[fieldPlayers], err = json.Marshal(r.Players); err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to encode players")
		}

		if r.Trades != nil {
			if fields[fieldTrades], err = json.Marshal(r.Trades); err != nil {
				return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to encode trades")
			}
		}

		rounds = append(rounds, fields)
	}

	rawRounds, err := json.Marshal(rounds)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to encode rounds")
	}

	document[roundsKey] = rawRounds

	data, err := json.Marshal(document)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to encode snapshot")
	}

	// Raw members keep their original layout; reindent the whole document.
	var out bytes.Buffer
	if err := stdjson.Indent(&out, data, "", "  "); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to indent snapshot")
	}

	out.WriteByte('\n')

	return out.Bytes(), nil
}

func rawFields(fields map[string]jsoniter.RawMessage, skip ...string) entity.RawFields {
	extra := make(entity.RawFields, len(fields))

outer:
	for k, v := range fields {
		for _, s := range skip {
			if k == s {
				continue outer
			}
		}

		extra[k] = v
	}

	if len(extra) == 0 {
		return nil
	}

	return extra
}

func isNull(raw jsoniter.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

func malformed(err error, message string) error {
	if err == nil {
		return domain.NewError(errcodes.MalformedSnapshot, message)
	}

	return domain.WrapError(err, errcodes.MalformedSnapshot, message)
}
