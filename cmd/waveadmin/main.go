// waveadmin creates, inspects and maintains persisted wave-verifier records.
// It is the administrative surface: the freeze and finalize actions the core
// structures expose but never trigger themselves live here.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	wave "github.com/wavefork/wave-verifier"
	"github.com/wavefork/wave-verifier/compress"
	"github.com/wavefork/wave-verifier/hashset"
	"github.com/wavefork/wave-verifier/merkle"
	"github.com/wavefork/wave-verifier/store"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML configuration file",
	}
	ownerFlag = &cli.StringFlag{
		Name:     "owner",
		Usage:    "hex encoded 32 byte owner identity",
		Required: true,
	}
	tsFlag = &cli.Int64Flag{
		Name:  "ts",
		Usage: "operation timestamp (unix seconds)",
	}
)

func main() {
	app := &cli.App{
		Name:  "waveadmin",
		Usage: "create, inspect and maintain wave-verifier records",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "create-tree",
				Usage:  "allocate a commitment tree record",
				Flags:  []cli.Flag{ownerFlag, tsFlag},
				Action: createTree,
			},
			{
				Name:   "create-set",
				Usage:  "allocate a nullifier set record",
				Flags:  []cli.Flag{ownerFlag, tsFlag},
				Action: createSet,
			},
			{
				Name:   "inspect",
				Usage:  "print the state of an owner's records",
				Flags:  []cli.Flag{ownerFlag},
				Action: inspect,
			},
			{
				Name:  "append",
				Usage: "queue hex leaves as one batch and process the queue",
				Flags: []cli.Flag{ownerFlag, tsFlag},
				ArgsUsage: "LEAF...",
				Action:    appendLeaves,
			},
			{
				Name:   "prove",
				Usage:  "print the inclusion proof for a leaf index",
				Flags:  []cli.Flag{ownerFlag, &cli.Uint64Flag{Name: "index", Required: true}},
				Action: prove,
			},
			{
				Name:   "checkpoint",
				Usage:  "checkpoint the set's operation log (drains any rollover)",
				Flags:  []cli.Flag{ownerFlag, tsFlag},
				Action: checkpoint,
			},
			{
				Name:   "freeze",
				Usage:  "freeze the owner's nullifier set",
				Flags:  []cli.Flag{ownerFlag},
				Action: freeze,
			},
			{
				Name:   "finalize",
				Usage:  "finalize the owner's commitment tree",
				Flags:  []cli.Flag{ownerFlag},
				Action: finalize,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		slog.Error("waveadmin failed", "err", err)
		os.Exit(1)
	}
}

func openStore(c *cli.Context) (*Config, store.Store, error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	var s store.Store
	switch cfg.Store.Backend {
	case "memory":
		s = store.NewMemory()
	case "fs":
		s, err = store.NewFS(cfg.Store.Path)
	case "leveldb":
		s, err = store.OpenLevelDB(cfg.Store.Path)
	default:
		err = fmt.Errorf("%w: unknown store backend %q", wave.ErrInvalidArgument, cfg.Store.Backend)
	}
	if err != nil {
		return nil, nil, err
	}

	alg, err := compress.ParseAlgorithm(cfg.Store.Compression)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	if alg != compress.None {
		codec, err := compress.ForAlgorithm(alg)
		if err != nil {
			s.Close()
			return nil, nil, err
		}
		s = store.NewCompressed(s, codec)
	}
	return cfg, s, nil
}

func parseOwner(s string) (wave.Owner, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return wave.Owner{}, fmt.Errorf("%w: owner must be hex: %v", wave.ErrInvalidArgument, err)
	}
	v, err := wave.ValueFromBytes(raw)
	if err != nil {
		return wave.Owner{}, fmt.Errorf("%w: owner must be 32 bytes", wave.ErrInvalidArgument)
	}
	return wave.Owner(v), nil
}

func treeName(owner wave.Owner) string { return "tree-" + owner.String() }

func setName(owner wave.Owner) string { return "set-" + owner.String() }

func createTree(c *cli.Context) error {
	cfg, s, err := openStore(c)
	if err != nil {
		return err
	}
	defer s.Close()
	owner, err := parseOwner(c.String("owner"))
	if err != nil {
		return err
	}

	t, err := merkle.New(cfg.Tree.Depth, cfg.Tree.MaxLeafSize, owner,
		merkle.WithCreatedAt(c.Int64("ts")),
		merkle.WithCompression(cfg.Store.Compression != "" && cfg.Store.Compression != "none"),
	)
	if err != nil {
		return err
	}
	return putTree(c.Context, s, owner, t)
}

func createSet(c *cli.Context) error {
	cfg, s, err := openStore(c)
	if err != nil {
		return err
	}
	defer s.Close()
	owner, err := parseOwner(c.String("owner"))
	if err != nil {
		return err
	}

	set := hashset.New(cfg.Set.Capacity, owner, hashset.WithCreatedAt(c.Int64("ts")))
	return putSet(c.Context, s, owner, set)
}

func inspect(c *cli.Context) error {
	_, s, err := openStore(c)
	if err != nil {
		return err
	}
	defer s.Close()
	owner, err := parseOwner(c.String("owner"))
	if err != nil {
		return err
	}

	if t, err := getTree(c.Context, s, owner); err == nil {
		meta := t.Metadata()
		fmt.Printf("tree: depth=%d leaves=%d/%d root=%s finalized=%v pending=%d\n",
			t.Depth(), t.LeafCount(), t.Capacity(), t.Root(), meta.Finalized, t.PendingBatches())
	}
	if set, err := getSet(c.Context, s, owner); err == nil {
		meta := set.Metadata()
		fmt.Printf("set: items=%d/%d buckets=%d frozen=%v rollovers=%d ops=%d\n",
			set.Len(), set.Capacity(), set.BucketCount(), meta.Frozen, meta.RolloverCount, meta.TotalOps)
	}
	return nil
}

func appendLeaves(c *cli.Context) error {
	_, s, err := openStore(c)
	if err != nil {
		return err
	}
	defer s.Close()
	owner, err := parseOwner(c.String("owner"))
	if err != nil {
		return err
	}
	t, err := getTree(c.Context, s, owner)
	if err != nil {
		return err
	}

	var leaves []wave.Value
	for _, arg := range c.Args().Slice() {
		raw, err := hex.DecodeString(arg)
		if err != nil {
			return fmt.Errorf("%w: leaf must be hex: %v", wave.ErrInvalidArgument, err)
		}
		leaf, err := wave.ValueFromBytes(raw)
		if err != nil {
			return fmt.Errorf("%w: leaf must be 32 bytes", wave.ErrInvalidArgument)
		}
		leaves = append(leaves, leaf)
	}
	if len(leaves) == 0 {
		return fmt.Errorf("%w: no leaves given", wave.ErrInvalidArgument)
	}

	seq, err := t.CreateBatch(leaves, owner, merkle.ClassStandard, c.Int64("ts"))
	if err != nil {
		return err
	}
	for {
		_, ok, err := t.ProcessNextBatch()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	fmt.Printf("batch %d processed, leaf count %d, root %s\n", seq, t.LeafCount(), t.Root())
	return putTree(c.Context, s, owner, t)
}

func prove(c *cli.Context) error {
	_, s, err := openStore(c)
	if err != nil {
		return err
	}
	defer s.Close()
	owner, err := parseOwner(c.String("owner"))
	if err != nil {
		return err
	}
	t, err := getTree(c.Context, s, owner)
	if err != nil {
		return err
	}

	proof, err := t.Proof(c.Uint64("index"))
	if err != nil {
		return err
	}
	for _, sibling := range proof {
		fmt.Println(sibling)
	}
	return nil
}

func checkpoint(c *cli.Context) error {
	_, s, err := openStore(c)
	if err != nil {
		return err
	}
	defer s.Close()
	owner, err := parseOwner(c.String("owner"))
	if err != nil {
		return err
	}
	set, err := getSet(c.Context, s, owner)
	if err != nil {
		return err
	}

	set.Checkpoint(c.Int64("ts"))
	return putSet(c.Context, s, owner, set)
}

func freeze(c *cli.Context) error {
	_, s, err := openStore(c)
	if err != nil {
		return err
	}
	defer s.Close()
	owner, err := parseOwner(c.String("owner"))
	if err != nil {
		return err
	}
	set, err := getSet(c.Context, s, owner)
	if err != nil {
		return err
	}

	set.Freeze()
	return putSet(c.Context, s, owner, set)
}

func finalize(c *cli.Context) error {
	_, s, err := openStore(c)
	if err != nil {
		return err
	}
	defer s.Close()
	owner, err := parseOwner(c.String("owner"))
	if err != nil {
		return err
	}
	t, err := getTree(c.Context, s, owner)
	if err != nil {
		return err
	}

	if err := t.Finalize(); err != nil {
		return err
	}
	return putTree(c.Context, s, owner, t)
}

func putTree(ctx context.Context, s store.Store, owner wave.Owner, t *merkle.Tree) error {
	data, err := t.MarshalBinary()
	if err != nil {
		return err
	}
	return s.Put(ctx, treeName(owner), data)
}

func getTree(ctx context.Context, s store.Store, owner wave.Owner) (*merkle.Tree, error) {
	data, err := s.Get(ctx, treeName(owner))
	if err != nil {
		return nil, err
	}
	return merkle.UnmarshalBinary(data)
}

func putSet(ctx context.Context, s store.Store, owner wave.Owner, set *hashset.Set) error {
	data, err := set.MarshalBinary()
	if err != nil {
		return err
	}
	return s.Put(ctx, setName(owner), data)
}

func getSet(ctx context.Context, s store.Store, owner wave.Owner) (*hashset.Set, error) {
	data, err := s.Get(ctx, setName(owner))
	if err != nil {
		return nil, err
	}
	return hashset.UnmarshalBinary(data)
}
