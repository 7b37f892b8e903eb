// Package taxdump parses the NCBI taxonomy dump and loads the insect subtree
// into the host taxonomy store.
package taxdump

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/entolab/isympred/internal/hoststore"
)

// DefaultRoot is the clade loaded into the host store. Host lookups only
// ever concern insects, and the full dump is two orders of magnitude larger.
const DefaultRoot = "Insecta"

// Node is one nodes.dmp entry.
type Node struct {
	TaxID    int64
	ParentID int64
	Rank     string
}

// fieldSep is the NCBI dmp column separator; lines end with a trailing "\t|".
const fieldSep = "\t|\t"

// ParseNodes reads nodes.dmp into a tax_id keyed map.
func ParseNodes(r io.Reader) (map[int64]Node, error) {
	nodes := make(map[int64]Node)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Split(strings.TrimSuffix(scanner.Text(), "\t|"), fieldSep)
		if len(fields) < 3 {
			continue
		}
		taxID, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			continue
		}
		parentID, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			continue
		}
		nodes[taxID] = Node{TaxID: taxID, ParentID: parentID, Rank: strings.TrimSpace(fields[2])}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "taxdump: read nodes.dmp")
	}
	if len(nodes) == 0 {
		return nil, eris.New("taxdump: nodes.dmp is empty")
	}
	return nodes, nil
}

// ParseNames reads names.dmp, keeping only the scientific name of each node.
func ParseNames(r io.Reader) (map[int64]string, error) {
	names := make(map[int64]string)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Split(strings.TrimSuffix(scanner.Text(), "\t|"), fieldSep)
		if len(fields) < 4 {
			continue
		}
		if strings.TrimSpace(fields[3]) != "scientific name" {
			continue
		}
		taxID, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			continue
		}
		names[taxID] = strings.TrimSpace(fields[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "taxdump: read names.dmp")
	}
	if len(names) == 0 {
		return nil, eris.New("taxdump: names.dmp has no scientific names")
	}
	return names, nil
}

// Subtree returns the tax ids of rootName and every descendant.
func Subtree(nodes map[int64]Node, names map[int64]string, rootName string) (map[int64]bool, error) {
	var rootID int64
	for id, name := range names {
		if name == rootName {
			if _, ok := nodes[id]; ok {
				rootID = id
				break
			}
		}
	}
	if rootID == 0 {
		return nil, eris.Errorf("taxdump: root %q not found", rootName)
	}

	children := make(map[int64][]int64, len(nodes))
	for id, n := range nodes {
		if id == n.ParentID {
			// The dump's root node is its own parent.
			continue
		}
		children[n.ParentID] = append(children[n.ParentID], id)
	}

	subtree := map[int64]bool{rootID: true}
	stack := []int64{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range children[id] {
			if !subtree[child] {
				subtree[child] = true
				stack = append(stack, child)
			}
		}
	}
	return subtree, nil
}

// Load inserts the rootName subtree into the host taxonomy store and returns
// the number of nodes written. The subtree root's parent link is cut so
// lineage walks stop there.
func Load(ctx context.Context, store *hoststore.SQLiteResolver, nodes map[int64]Node, names map[int64]string, rootName string) (int, error) {
	subtree, err := Subtree(nodes, names, rootName)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for id := range subtree {
		n := nodes[id]
		name, ok := names[id]
		if !ok {
			continue
		}
		parentID := n.ParentID
		if names[parentID] == "" || !subtree[parentID] {
			parentID = 0
		}
		if err := store.InsertNode(ctx, n.TaxID, parentID, n.Rank, name); err != nil {
			return inserted, err
		}
		inserted++
	}

	zap.L().Info("taxdump: loaded host taxonomy",
		zap.String("root", rootName),
		zap.Int("nodes", inserted),
	)
	return inserted, nil
}
