package network

import (
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
)

var gzipMagic = []byte{0x1f, 0x8b}

type xmlNet struct {
	Edges       []xmlEdge       `xml:"edge"`
	Connections []xmlConnection `xml:"connection"`
	TLLogics    []xmlTLLogic    `xml:"tlLogic"`
}

type xmlEdge struct {
	ID       string    `xml:"id,attr"`
	Function string    `xml:"function,attr"`
	Lanes    []xmlLane `xml:"lane"`
}

type xmlLane struct {
	ID string `xml:"id,attr"`
}

type xmlConnection struct {
	From      string `xml:"from,attr"`
	To        string `xml:"to,attr"`
	FromLane  string `xml:"fromLane,attr"`
	Dir       string `xml:"dir,attr"`
	TL        string `xml:"tl,attr"`
	LinkIndex string `xml:"linkIndex,attr"`
}

type xmlTLLogic struct {
	ID        string     `xml:"id,attr"`
	ProgramID string     `xml:"programID,attr"`
	Phases    []xmlPhase `xml:"phase"`
}

type xmlPhase struct {
	Duration float64 `xml:"duration,attr"`
	State    string  `xml:"state,attr"`
}

// Decode 解析SUMO路网（.net.xml，自动识别gzip压缩）
// 功能：只读取拓扑分析所需的edge/lane、connection与tlLogic/phase
// 参数：r-路网数据流
// 返回：路网与错误
// 说明：fromLane非法时取0，linkIndex缺失或非法时取-1
func Decode(r io.Reader) (*Network, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if head, err := br.Peek(len(gzipMagic)); err == nil && head[0] == gzipMagic[0] && head[1] == gzipMagic[1] {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip network: %w", err)
		}
		defer zr.Close()
		src = zr
	}
	var raw xmlNet
	if err := xml.NewDecoder(src).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode network: %w", err)
	}

	edges := make([]Edge, 0, len(raw.Edges))
	for _, e := range raw.Edges {
		lanes := make([]string, 0, len(e.Lanes))
		for _, l := range e.Lanes {
			if l.ID != "" {
				lanes = append(lanes, l.ID)
			}
		}
		edges = append(edges, Edge{
			ID:       e.ID,
			Base:     BaseStreet(e.ID),
			Lanes:    lanes,
			Function: ParseEdgeFunction(e.Function),
		})
	}
	connections := make([]Connection, 0, len(raw.Connections))
	for _, c := range raw.Connections {
		connections = append(connections, Connection{
			From:      c.From,
			FromLane:  atoiOr(c.FromLane, 0),
			To:        c.To,
			Dir:       c.Dir,
			TL:        c.TL,
			LinkIndex: atoiOr(c.LinkIndex, -1),
		})
	}
	programs := make([]SignalProgram, 0, len(raw.TLLogics))
	for _, t := range raw.TLLogics {
		phases := make([]Phase, 0, len(t.Phases))
		for _, p := range t.Phases {
			phases = append(phases, Phase{Duration: p.Duration, State: p.State})
		}
		programs = append(programs, SignalProgram{ID: t.ID, ProgramID: t.ProgramID, Phases: phases})
	}
	n := New(edges, connections, programs)
	log.Infof("network loaded: %d edges, %d connections, %d signals", len(n.edgeIDs), len(n.connections), len(n.programs))
	return n, nil
}

// Load 从文件加载SUMO路网
func Load(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open network %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
