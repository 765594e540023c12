package pygexp

import (
	"context"
	"strings"

	"github.com/go-python/gpython/py"
	"github.com/stevenktruong/graph-expansion/gexp"
	"github.com/stevenktruong/graph-expansion/libgexp"
	"github.com/stevenktruong/graph-expansion/libgexp/catalog"
)

var (
	LIB_VERSION = "v1.2024.1"
)

var (
	pyGraphType     = py.NewType("Graph", "a product of coefficients and matrix traces")
	pyCatalogType   = py.NewType("Catalog", "gexp.Catalog")
	pyWorkspaceType = py.NewType("Workspace", "collects the catalogs opened by a script")
)

const kWorkspaceAttr = "_Workspace"

type pyGraph struct {
	*libgexp.Graph
}

func (X pyGraph) Type() *py.Type {
	return pyGraphType
}

func (X pyGraph) M__str__() (py.Object, error) {
	writer := strings.Builder{}
	X.WriteAsString(&writer, gexp.PrintOpts{ShowOrder: true})
	return py.String(writer.String()), nil
}

func (X pyGraph) M__repr__() (py.Object, error) {
	return X.M__str__()
}

func getGraph(obj py.Object) (*libgexp.Graph, error) {
	X, ok := obj.(pyGraph)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Graph object (got %v)", obj.Type().Name)
	}
	return X.Graph, nil
}

func getGraphs(obj py.Object) ([]*libgexp.Graph, error) {
	var items []py.Object
	switch list := obj.(type) {
	case *py.List:
		items = list.Items
	case py.Tuple:
		items = list
	default:
		return nil, py.ExceptionNewf(py.TypeError, "expected list of Graph objects (got %v)", obj.Type().Name)
	}
	out := make([]*libgexp.Graph, len(items))
	for i, item := range items {
		X, err := getGraph(item)
		if err != nil {
			return nil, err
		}
		out[i] = X
	}
	return out, nil
}

func wrapGraphs(terms []*libgexp.Graph) py.Object {
	items := make([]py.Object, len(terms))
	for i, X := range terms {
		items[i] = pyGraph{X}
	}
	return py.NewListFromItems(items)
}

func getBool(obj py.Object) (bool, error) {
	switch v := obj.(type) {
	case py.Bool:
		return bool(v), nil
	case py.Int:
		return v != 0, nil
	}
	return false, py.ExceptionNewf(py.TypeError, "expected bool (got %v)", obj.Type().Name)
}

func getString(obj py.Object) (string, error) {
	str, ok := obj.(py.String)
	if !ok {
		return "", py.ExceptionNewf(py.TypeError, "expected str (got %v)", obj.Type().Name)
	}
	return string(str), nil
}

// checkArgs returns a TypeError unless min <= len(args) <= max.
func checkArgs(name string, args py.Tuple, min, max int) error {
	if len(args) < min || len(args) > max {
		return py.ExceptionNewf(py.TypeError, "%s() takes %d to %d arguments (%d given)", name, min, max, len(args))
	}
	return nil
}

func valueError(err error) error {
	return py.ExceptionNewf(py.ValueError, "%v", err)
}

// Arg 1 (str): seed name
func py_Seed(module py.Object, args py.Tuple) (py.Object, error) {
	var nameObj py.Object
	if err := py.ParseTuple(args, "O", &nameObj); err != nil {
		return nil, err
	}
	name, err := getString(nameObj)
	if err != nil {
		return nil, err
	}
	X, err := libgexp.SeedGraph(name)
	if err != nil {
		return nil, py.ExceptionNewf(py.KeyError, "%v", err)
	}
	return pyGraph{X}, nil
}

func py_Seeds(module py.Object, args py.Tuple) (py.Object, error) {
	seeds := libgexp.Seeds()
	items := make([]py.Object, len(seeds))
	for i, s := range seeds {
		items[i] = py.String(s.Name)
	}
	return py.NewListFromItems(items), nil
}

// Arg 1 (Graph): seed graph
// Arg 2 (int): target order
// Arg 3 (int, optional): max number of leading terms
func py_LeadingTerms(module py.Object, args py.Tuple) (py.Object, error) {
	if err := checkArgs("leading_terms", args, 2, 3); err != nil {
		return nil, err
	}
	X, err := getGraph(args[0])
	if err != nil {
		return nil, err
	}
	order, err := py.GetInt(args[1])
	if err != nil {
		return nil, err
	}
	opts := libgexp.SearchOpts{}
	if len(args) > 2 {
		maxTerms, err := py.GetInt(args[2])
		if err != nil {
			return nil, err
		}
		opts.MaxTerms = int(maxTerms)
	}

	res, err := libgexp.ComputeLeadingTerms(context.Background(), X, int(order), opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return wrapGraphs(res.LeadingTerms), nil
}

// Arg 1 (Graph): graph to rewrite
// Arg 2 (bool, optional): keep the self-consistent term instead of solving
func py_Expand(module py.Object, args py.Tuple) (py.Object, error) {
	if err := checkArgs("expand", args, 1, 2); err != nil {
		return nil, err
	}
	X, err := getGraph(args[0])
	if err != nil {
		return nil, err
	}
	unsolved := false
	if len(args) > 1 {
		if unsolved, err = getBool(args[1]); err != nil {
			return nil, err
		}
	}

	var terms []*libgexp.Graph
	switch {
	case X.NumLightWeights() > 0:
		terms, err = libgexp.ExpandLightWeight(X, libgexp.LightWeightOpts{Unsolved: unsolved})
	default:
		terms, err = libgexp.ExpandGLoop(X, libgexp.GLoopOpts{Unsolved: unsolved})
	}
	if err != nil {
		return nil, valueError(err)
	}
	return wrapGraphs(terms), nil
}

func py_Drift(module py.Object, args py.Tuple) (py.Object, error) {
	var obj py.Object
	if err := py.ParseTuple(args, "O", &obj); err != nil {
		return nil, err
	}
	X, err := getGraph(obj)
	if err != nil {
		return nil, err
	}
	terms, err := libgexp.DriftTerms(X)
	if err != nil {
		return nil, valueError(err)
	}
	return wrapGraphs(terms), nil
}

func py_Canonical(module py.Object, args py.Tuple) (py.Object, error) {
	var obj py.Object
	if err := py.ParseTuple(args, "O", &obj); err != nil {
		return nil, err
	}
	X, err := getGraph(obj)
	if err != nil {
		return nil, err
	}
	return pyGraph{libgexp.Canonical(X)}, nil
}

func py_Graph_Tex(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	return py.String(X.Tex()), nil
}

func py_Graph_Order(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	return py.Int(X.Order()), nil
}

func py_Graph_IsDeterministic(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	return py.NewBool(X.IsDeterministic()), nil
}

func py_Graph_Size(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	return py.String(libgexp.SizeOf(X.Graph).Tex()), nil
}

func py_Graph_GoString(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	return py.String(X.GoString()), nil
}

func py_Graph_Equal(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	var obj py.Object
	if err := py.ParseTuple(args, "O", &obj); err != nil {
		return nil, err
	}
	Y, err := getGraph(obj)
	if err != nil {
		return nil, err
	}
	return py.NewBool(X.Equal(Y)), nil
}

// Workspace holds the catalogs a script opens; they close with the script's context.
type Workspace struct {
	CatalogCtx gexp.CatalogContext
}

func (ws *Workspace) Close() {
	ws.CatalogCtx.Close()
	<-ws.CatalogCtx.Done()
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func getWorkspace(module py.Object) *Workspace {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		return nil
	}
	return wsObj.(*Workspace)
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	ws := getWorkspace(module)
	if ws == nil {
		ws = &Workspace{
			CatalogCtx: gexp.NewCatalogContext(),
		}
		py.SetAttrString(module, kWorkspaceAttr, ws)
	}
	return ws, nil
}

// Arg 1 (str): catalog path ("" for an in-memory catalog)
// Arg 2 (str, optional): seed name recorded in the catalog
// Arg 3 (bool, optional): read-only
func py_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)

	if err := checkArgs("open_catalog", args, 1, 3); err != nil {
		return nil, err
	}
	var (
		opts gexp.CatalogOpts
		err  error
	)
	if opts.DbPathName, err = getString(args[0]); err != nil {
		return nil, err
	}
	if len(args) > 1 {
		if opts.Seed, err = getString(args[1]); err != nil {
			return nil, err
		}
	}
	if len(args) > 2 {
		if opts.ReadOnly, err = getBool(args[2]); err != nil {
			return nil, err
		}
	}

	cat, err := catalog.OpenCatalog(ws.CatalogCtx, opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return pyCatalog{cat}, nil
}

type pyCatalog struct {
	gexp.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

func py_Catalog_Add(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var obj py.Object
	if err := py.ParseTuple(args, "O", &obj); err != nil {
		return nil, err
	}
	terms, err := getGraphs(obj)
	if err != nil {
		return nil, err
	}
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "%v", gexp.ErrCatalogReadOnly)
	}

	count := 0
	for _, X := range terms {
		added, err := cat.TryAddTerm(X)
		if err != nil {
			return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
		}
		if added {
			count++
		}
	}
	return py.Int(count), nil
}

func py_Catalog_NumTerms(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	return py.Int(cat.NumTerms()), nil
}

// Arg 1 (int, optional): min order
// Arg 2 (int, optional): max order
func py_Catalog_Select(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if err := checkArgs("select", args, 0, 2); err != nil {
		return nil, err
	}
	sel := gexp.DefaultTermSelector
	if len(args) > 0 {
		minOrder, err := py.GetInt(args[0])
		if err != nil {
			return nil, err
		}
		sel.MinOrder = int(minOrder)
	}
	if len(args) > 1 {
		maxOrder, err := py.GetInt(args[1])
		if err != nil {
			return nil, err
		}
		sel.MaxOrder = int(maxOrder)
	}

	var terms []*libgexp.Graph
	for _, X := range gexp.SelectFromCatalog(cat, sel).Collect() {
		terms = append(terms, X.(*libgexp.Graph))
	}
	return wrapGraphs(terms), nil
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.Catalog != nil {
		cat.Close()
	}
	return py.None, nil
}

func init() {

	/////////////////////////////////
	// Graph
	{
		pyGraphType.Dict["tex"] = py.MustNewMethod("tex", py_Graph_Tex, 0, "renders this Graph as LaTeX")
		pyGraphType.Dict["order"] = py.MustNewMethod("order", py_Graph_Order, 0, "power of 1/N carried by this Graph")
		pyGraphType.Dict["is_deterministic"] = py.MustNewMethod("is_deterministic", py_Graph_IsDeterministic, 0, "")
		pyGraphType.Dict["size"] = py.MustNewMethod("size", py_Graph_Size, 0, "power-counting size as LaTeX")
		pyGraphType.Dict["go_string"] = py.MustNewMethod("go_string", py_Graph_GoString, 0, "Go code that builds this Graph")
		pyGraphType.Dict["equal"] = py.MustNewMethod("equal", py_Graph_Equal, 0, "")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["add"] = py.MustNewMethod("add", py_Catalog_Add, 0, "adds a list of terms, returning how many were new")
		pyCatalogType.Dict["num_terms"] = py.MustNewMethod("num_terms", py_Catalog_NumTerms, 0, "")
		pyCatalogType.Dict["select"] = py.MustNewMethod("select", py_Catalog_Select, 0, "")
		pyCatalogType.Dict["close"] = py.MustNewMethod("close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["open_catalog"] = py.MustNewMethod("open_catalog", py_Workspace_OpenCatalog, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("seed", py_Seed, 0, "builds a named seed graph"),
			py.MustNewMethod("seeds", py_Seeds, 0, "lists the seed names"),
			py.MustNewMethod("leading_terms", py_LeadingTerms, 0, "leading terms of a graph at the given order"),
			py.MustNewMethod("expand", py_Expand, 0, "applies one rewrite step"),
			py.MustNewMethod("drift", py_Drift, 0, "drift terms of a graph"),
			py.MustNewMethod("canonical", py_Canonical, 0, "renumbers internal indices"),
			py.MustNewMethod("workspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "gexp",
				Doc:  "perturbative graph expansion gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				if ws := getWorkspace(m); ws != nil {
					ws.Close()
				}
			},
		})
	}
}
