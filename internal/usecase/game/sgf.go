package game

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go_arena/internal/domain/board"
	"go_arena/internal/domain/game"
	"go_arena/internal/domain/sgf"
	errs "go_arena/internal/errors"
	"go_arena/internal/statuses"
)

// фиксированный порядок свойств SGF
var orderedKeys = []string{"FF", "GM", "CA", "AP", "SZ", "PB", "PW", "DT", "RE", "KM", "RU", "C", "B", "W"}

// PrepareSgfFile builds the root node of a game record.
func PrepareSgfFile(gameData game.Game) sgf.SGF {
	minSGF := sgf.SGF{
		Root: &sgf.GameTree{
			Nodes: []sgf.Node{
				{
					Properties: map[string][]string{
						"FF": {"4"},
						"GM": {"1"},
						"CA": {"UTF-8"},
						"AP": {"go_arena"},
						"SZ": {strconv.Itoa(gameData.BoardSize)},
						"PB": {gameData.PlayerBlack},
						"PW": {gameData.PlayerWhite},
						"DT": {gameData.CreatedAt.Format("2006-01-02")},
						"RE": {ResultString(gameData)},
						"KM": {strconv.FormatFloat(gameData.Komi, 'f', -1, 64)},
						"RU": {"Chinese"},
					},
				},
			},
		},
	}
	if gameData.Error != "" {
		minSGF.Root.Nodes[0].Properties["C"] = []string{gameData.Error}
	}
	return minSGF
}

// AddMovesToSgf appends one node per move. A resignation has no node; RE
// records it.
func AddMovesToSgf(tree *sgf.GameTree, moves []game.Move) {
	for _, move := range moves {
		if move.Coordinates == "resign" {
			continue
		}
		node := sgf.Node{
			Properties: map[string][]string{
				move.Color: {move.Coordinates},
			},
		}
		tree.Nodes = append(tree.Nodes, node)
	}
}

// BuildSGF renders a whole game record.
func BuildSGF(gameData game.Game) string {
	record := PrepareSgfFile(gameData)
	AddMovesToSgf(record.Root, gameData.Moves)
	return SerializeSGF(&record)
}

func SerializeSGF(s *sgf.SGF) string {
	var builder strings.Builder
	builder.WriteString("(")
	serializeGameTree(&builder, s.Root)
	builder.WriteString(")")
	return builder.String()
}

func serializeGameTree(builder *strings.Builder, tree *sgf.GameTree) {
	for _, node := range tree.Nodes {
		builder.WriteString(";")

		used := make(map[string]bool)
		for _, key := range orderedKeys {
			if values, ok := node.Properties[key]; ok {
				used[key] = true
				writeProperty(builder, key, values)
			}
		}

		rest := make([]string, 0, len(node.Properties))
		for key := range node.Properties {
			if !used[key] {
				rest = append(rest, key)
			}
		}
		sort.Strings(rest)
		for _, key := range rest {
			writeProperty(builder, key, node.Properties[key])
		}
	}

	for _, child := range tree.Children {
		builder.WriteString("(")
		serializeGameTree(builder, child)
		builder.WriteString(")")
	}
}

func writeProperty(builder *strings.Builder, key string, values []string) {
	builder.WriteString(key)
	for _, v := range values {
		fmt.Fprintf(builder, "[%s]", sgf.Escape(v))
	}
}

// AppendMoveToSgf adds a move node to a serialized record.
func AppendMoveToSgf(sgfText string, move game.Move) string {
	if move.Coordinates == "resign" {
		return sgfText
	}
	if strings.HasSuffix(sgfText, ")") {
		sgfText = sgfText[:len(sgfText)-1]
	}
	return sgfText + fmt.Sprintf(";%s[%s])", move.Color, move.Coordinates)
}

// ResultString is the SGF RE value: "B+3.5", "W+R", "0" for a draw, "Void"
// for an aborted game and "" while it runs.
func ResultString(gameData game.Game) string {
	switch gameData.Status {
	case statuses.StatusAborted:
		return "Void"
	case statuses.StatusInProgress, "":
		return ""
	}
	var winner string
	switch gameData.Winner {
	case "black":
		winner = "B"
	case "white":
		winner = "W"
	default:
		return "0"
	}
	if gameData.Reason == game.ReasonResignation {
		return winner + "+R"
	}
	return winner + "+" + strconv.FormatFloat(math.Abs(gameData.Score), 'f', -1, 64)
}

// setupKeys place or remove stones outside the move sequence. Games are
// always played from an empty board, so records using them are refused.
var setupKeys = []string{"AB", "AW", "AE"}

// GameFromSGF reads the main line of a record into a finished game. The
// moves are replayed, so an illegal record is rejected. RE is taken as the
// result when present, the official score otherwise.
func GameFromSGF(text string) (game.Game, error) {
	parsed, err := sgf.Parse(text)
	if err != nil {
		return game.Game{}, err
	}
	size := 19
	if sz := parsed.Get("SZ"); sz != "" {
		// SZ may be "cols:rows"; only square boards are played
		if size, err = strconv.Atoi(strings.Split(sz, ":")[0]); err != nil {
			return game.Game{}, fmt.Errorf("%w: SZ[%s]", errs.ErrMalformedSGF, sz)
		}
	}
	komi := 0.0
	if km := parsed.Get("KM"); km != "" {
		if komi, err = strconv.ParseFloat(km, 64); err != nil {
			return game.Game{}, fmt.Errorf("%w: KM[%s]", errs.ErrMalformedSGF, km)
		}
	}

	var moves []game.Move
	for i, node := range parsed.MainLine() {
		for _, key := range setupKeys {
			if _, ok := node.Properties[key]; ok {
				return game.Game{}, fmt.Errorf("%w: setup stones %s in node %d are not supported", errs.ErrMalformedSGF, key, i)
			}
		}
		for _, color := range []string{"B", "W"} {
			if values, ok := node.Properties[color]; ok && len(values) > 0 {
				moves = append(moves, game.Move{Color: color, Coordinates: values[0]})
			}
		}
	}
	final, err := game.Replay(size, komi, moves)
	if err != nil {
		return game.Game{}, err
	}

	record := game.Game{
		BoardSize:   size,
		Komi:        komi,
		PlayerBlack: parsed.Get("PB"),
		PlayerWhite: parsed.Get("PW"),
		Moves:       moves,
		Status:      statuses.StatusFinished,
	}
	if !applyResult(&record, parsed.Get("RE")) {
		score := final.OfficialScore()
		record.Score = score
		record.Winner = game.Result{Winner: board.Winner(score)}.WinnerName()
		record.Reason = game.ReasonTwoPasses
	}
	return record, nil
}

func applyResult(record *game.Game, re string) bool {
	re = strings.TrimSpace(re)
	if re == "0" || strings.EqualFold(re, "draw") {
		record.Winner = "draw"
		record.Reason = game.ReasonTwoPasses
		return true
	}
	winner, margin, ok := strings.Cut(re, "+")
	if !ok {
		return false
	}
	switch strings.ToUpper(winner) {
	case "B":
		record.Winner = "black"
	case "W":
		record.Winner = "white"
	default:
		return false
	}
	switch strings.ToUpper(margin) {
	case "R", "RESIGN":
		record.Reason = game.ReasonResignation
		return true
	}
	score, err := strconv.ParseFloat(margin, 64)
	if err != nil {
		record.Winner = ""
		return false
	}
	if record.Winner == "black" {
		score = -score
	}
	record.Score = score
	record.Reason = game.ReasonTwoPasses
	return true
}
