package input

import (
	"context"
	"errors"
	"fmt"

	"github.com/fuzzylts/fuzzylts-go/entity/network"
	"github.com/fuzzylts/fuzzylts-go/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 路网集合中文档的class取值
const (
	ClassEdge       = "edge"
	ClassConnection = "connection"
	ClassTLLogic    = "tl_logic"
)

// ErrNoNetwork 未配置路网来源
var ErrNoNetwork = errors.New("no network source configured")

// document 路网集合中的一条记录，data的结构由class决定
type document struct {
	Class string   `bson:"class"`
	Data  bson.Raw `bson:"data"`
}

type edgeDoc struct {
	ID       string   `bson:"id"`
	Lanes    []string `bson:"lanes"`
	Function string   `bson:"function,omitempty"`
}

type connectionDoc struct {
	From      string `bson:"from"`
	FromLane  int    `bson:"from_lane"`
	To        string `bson:"to"`
	Dir       string `bson:"dir,omitempty"`
	TL        string `bson:"tl,omitempty"`
	LinkIndex *int   `bson:"link_index,omitempty"`
}

type phaseDoc struct {
	Duration float64 `bson:"duration"`
	State    string  `bson:"state"`
}

type tlLogicDoc struct {
	ID        string     `bson:"id"`
	ProgramID string     `bson:"program_id,omitempty"`
	Phases    []phaseDoc `bson:"phases"`
}

// LoadNetwork 加载静态路网
// 功能：根据输入配置从文件或MongoDB加载路网
// 参数：ctx-上下文，in-输入配置
// 返回：路网与错误
// 说明：File非空时优先从文件加载，否则从URI指定的MongoDB的db.col集合下载
func LoadNetwork(ctx context.Context, in config.Input) (*network.Network, error) {
	if in.Network.File != "" {
		log.Infof("load network from file %s", in.Network.File)
		return network.Load(in.Network.File)
	}
	if in.URI == "" || in.Network.DB == "" || in.Network.Col == "" {
		return nil, ErrNoNetwork
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(in.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warnf("disconnect mongo: %v", err)
		}
	}()
	coll := client.Database(in.Network.GetDb()).Collection(in.Network.GetColl())
	log.Infof("start fetching from %s.%s", in.Network.DB, in.Network.Col)
	cur, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", in.Network.DB, in.Network.Col, err)
	}
	defer cur.Close(ctx)
	docs := make([]bson.Raw, 0)
	for cur.Next(ctx) {
		docs = append(docs, append(bson.Raw(nil), cur.Current...))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s.%s: %w", in.Network.DB, in.Network.Col, err)
	}
	log.Infof("finish fetching %d documents from %s.%s", len(docs), in.Network.DB, in.Network.Col)
	return FromDocuments(docs)
}

// FromDocuments 由bson文档构建路网
// 功能：按class把文档解码为边、连接与信号灯程序
// 参数：docs-原始bson文档
// 返回：路网与错误，任何一条文档解码失败即返回错误
// 说明：未知class的文档被忽略；连接缺失link_index时取-1
func FromDocuments(docs []bson.Raw) (*network.Network, error) {
	var (
		edges       []network.Edge
		connections []network.Connection
		programs    []network.SignalProgram
		ignored     int
	)
	for i, raw := range docs {
		var doc document
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		var err error
		switch doc.Class {
		case ClassEdge:
			var e edgeDoc
			if err = bson.Unmarshal(doc.Data, &e); err == nil {
				edges = append(edges, network.Edge{
					ID:       e.ID,
					Base:     network.BaseStreet(e.ID),
					Lanes:    e.Lanes,
					Function: network.ParseEdgeFunction(e.Function),
				})
			}
		case ClassConnection:
			var c connectionDoc
			if err = bson.Unmarshal(doc.Data, &c); err == nil {
				linkIndex := -1
				if c.LinkIndex != nil {
					linkIndex = *c.LinkIndex
				}
				connections = append(connections, network.Connection{
					From:      c.From,
					FromLane:  c.FromLane,
					To:        c.To,
					Dir:       c.Dir,
					TL:        c.TL,
					LinkIndex: linkIndex,
				})
			}
		case ClassTLLogic:
			var t tlLogicDoc
			if err = bson.Unmarshal(doc.Data, &t); err == nil {
				phases := make([]network.Phase, 0, len(t.Phases))
				for _, p := range t.Phases {
					phases = append(phases, network.Phase{Duration: p.Duration, State: p.State})
				}
				programs = append(programs, network.SignalProgram{ID: t.ID, ProgramID: t.ProgramID, Phases: phases})
			}
		default:
			ignored++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("document %d (class=%s): %w", i, doc.Class, err)
		}
	}
	if ignored > 0 {
		log.Warnf("%d documents with unknown class ignored", ignored)
	}
	return network.New(edges, connections, programs), nil
}
