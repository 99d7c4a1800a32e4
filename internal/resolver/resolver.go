package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/agentfoundry/internal/ctxlog"
	"github.com/vk/agentfoundry/internal/ctyval"
	"github.com/vk/agentfoundry/internal/document"
	"github.com/vk/agentfoundry/internal/vars"
)

// Reference roots understood by the expression language.
const (
	rootVar     = "var"
	rootModel   = "model"
	rootPlugin  = "plugin"
	rootAgent   = "agent"
	rootRuntime = "runtime"
)

// Resolver performs one resolution pass over a merged corpus. It is not
// reusable; construct a fresh one per pass.
type Resolver struct {
	corpus *document.Corpus
	store  *vars.Store

	varBlocks  map[string]*document.Block // variable name -> declaration
	blockCells map[string]*document.Block // cell key -> source block

	variables  map[string]*Variable
	blocks     map[string]*Block    // cell key -> resolved block
	refObjects map[string]cty.Value // cell key -> value visible to expressions

	inProgress map[string]bool
	stack      []string
}

// New indexes the corpus and prepares a resolver. Label arity problems
// (a model without a name, a plugin without kind and name) are reported
// here because no cell can be formed for such blocks.
func New(corpus *document.Corpus, store *vars.Store) (*Resolver, error) {
	r := &Resolver{
		corpus:     corpus,
		store:      store,
		varBlocks:  make(map[string]*document.Block),
		blockCells: make(map[string]*document.Block),
		variables:  make(map[string]*Variable),
		blocks:     make(map[string]*Block),
		refObjects: make(map[string]cty.Value),
		inProgress: make(map[string]bool),
	}

	for _, block := range corpus.Blocks {
		switch block.Type {
		case "variable":
			if len(block.Labels) != 1 {
				return nil, labelError(block, "variable blocks require exactly one label: the variable name")
			}
			r.varBlocks[block.Labels[0]] = block
		case rootModel, rootAgent:
			if len(block.Labels) != 1 {
				return nil, labelError(block, block.Type+" blocks require exactly one label: the "+block.Type+" id")
			}
			r.blockCells[block.Type+"."+block.Labels[0]] = block
		case rootPlugin:
			if len(block.Labels) != 2 {
				return nil, labelError(block, "plugin blocks require two labels: kind and name")
			}
			r.blockCells[rootPlugin+"."+block.Labels[0]+"."+block.Labels[1]] = block
		case rootRuntime:
			if len(block.Labels) != 0 {
				return nil, labelError(block, "runtime blocks take no labels")
			}
			r.blockCells[rootRuntime] = block
		default:
			// Custom registries may declare further block types; they are
			// resolved under their identity key and validated like the rest.
			r.blockCells[block.Identity()] = block
		}
	}
	return r, nil
}

func labelError(block *document.Block, detail string) error {
	return &document.SyntaxError{
		Filename: block.DefRange.Filename,
		Pos:      block.DefRange.Start,
		Summary:  "invalid block labels",
		Detail:   detail,
	}
}

// ResolveAll resolves every cell and assembles the Result. Iteration order
// is sorted so repeated passes over the same inputs behave identically.
func (r *Resolver) ResolveAll(ctx context.Context) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	varNames := make([]string, 0, len(r.varBlocks))
	for name := range r.varBlocks {
		varNames = append(varNames, name)
	}
	sort.Strings(varNames)
	for _, name := range varNames {
		if _, err := r.resolveVariable(name); err != nil {
			return nil, err
		}
	}
	logger.Debug("All variables resolved.", "count", len(r.variables))

	cellKeys := make([]string, 0, len(r.blockCells))
	for key := range r.blockCells {
		cellKeys = append(cellKeys, key)
	}
	sort.Strings(cellKeys)
	for _, key := range cellKeys {
		if _, err := r.resolveBlockCell(key); err != nil {
			return nil, err
		}
	}
	logger.Debug("All blocks resolved.", "count", len(r.blocks))

	return r.assemble(cellKeys, varNames), nil
}

func (r *Resolver) assemble(cellKeys, varNames []string) *Result {
	result := &Result{
		Variables: r.variables,
		Models:    make(map[string]*Block),
		Plugins:   make(map[string]*Block),
		Agents:    make(map[string]*Block),
	}

	for _, key := range cellKeys {
		rb := r.blocks[key]
		result.All = append(result.All, rb)
		switch rb.Type {
		case rootRuntime:
			result.Runtime = rb
		case rootModel:
			result.Models[rb.Labels[0]] = rb
		case rootAgent:
			result.Agents[rb.Labels[0]] = rb
		case rootPlugin:
			result.Plugins[rb.Labels[0]+":"+rb.Labels[1]] = rb
		}
	}

	// Synthetic blocks let the validator see variable declarations with the
	// same machinery as everything else.
	for _, name := range varNames {
		v := r.variables[name]
		attrs := map[string]cty.Value{"type": cty.StringVal(v.Type)}
		if v.Description != "" {
			attrs["description"] = cty.StringVal(v.Description)
		}
		if v.Sensitive {
			attrs["sensitive"] = cty.True
		}
		if v.Source == vars.SourceDefault {
			attrs["default"] = v.Value
		}
		// Surface unrecognized declaration attributes so the validator can
		// flag them; their values are never needed.
		for attrName := range r.varBlocks[name].Attributes {
			if _, known := attrs[attrName]; !known && !declAttr(attrName) {
				attrs[attrName] = cty.NullVal(cty.DynamicPseudoType)
			}
		}
		result.All = append(result.All, &Block{
			Type:     "variable",
			Labels:   []string{name},
			Attrs:    attrs,
			Nested:   v.Nested,
			DefRange: v.DeclRange,
		})
	}

	return result
}

// declAttr reports whether a name is one of the attributes a variable
// declaration understands.
func declAttr(name string) bool {
	switch name {
	case "type", "description", "sensitive", "default":
		return true
	}
	return false
}

// enter marks a cell as in progress, detecting cycles.
func (r *Resolver) enter(key string) error {
	if r.inProgress[key] {
		cycle := append(cycleTail(r.stack, key), key)
		return &CircularDependencyError{Cycle: cycle}
	}
	r.inProgress[key] = true
	r.stack = append(r.stack, key)
	return nil
}

func (r *Resolver) leave(key string) {
	delete(r.inProgress, key)
	r.stack = r.stack[:len(r.stack)-1]
}

// cycleTail trims the stack to the portion belonging to the cycle.
func cycleTail(stack []string, key string) []string {
	for i, k := range stack {
		if k == key {
			return append([]string(nil), stack[i:]...)
		}
	}
	return append([]string(nil), stack...)
}

// resolveVariable computes a variable's effective value exactly once,
// applying override precedence and the declared type.
func (r *Resolver) resolveVariable(name string) (cty.Value, error) {
	if v, ok := r.variables[name]; ok {
		return v.Value, nil
	}

	key := rootVar + "." + name
	if err := r.enter(key); err != nil {
		return cty.NilVal, err
	}
	defer r.leave(key)

	decl, ok := r.varBlocks[name]
	if !ok {
		return cty.NilVal, &vars.MissingVariableError{Name: name}
	}

	declaredType := "any"
	if attr := decl.Attr("type"); attr != nil {
		kw, err := ctyval.TypeKeyword(attr.Expr)
		if err != nil {
			// Keep the raw string so schema validation reports it with the
			// configured error message; resolution falls back to any.
			if raw, diags := attr.Expr.Value(nil); !diags.HasErrors() && raw.Type() == cty.String {
				declaredType = raw.AsString()
			} else {
				return cty.NilVal, fmt.Errorf("variable %q: %w", name, err)
			}
		} else {
			declaredType = kw
		}
	}

	variable := &Variable{
		Name:      name,
		Type:      declaredType,
		DeclRange: decl.DefRange,
	}
	if attr := decl.Attr("description"); attr != nil {
		if val, err := r.evalExpr(attr.Expr); err == nil && !val.IsNull() && val.Type() == cty.String {
			variable.Description = val.AsString()
		}
	}
	if attr := decl.Attr("sensitive"); attr != nil {
		if val, diags := attr.Expr.Value(nil); !diags.HasErrors() && val.Type() == cty.Bool {
			variable.Sensitive = val.True()
		}
	}
	for _, nb := range decl.Nested {
		child, _, err := r.resolveBlockBody(nb)
		if err != nil {
			return cty.NilVal, err
		}
		variable.Nested = append(variable.Nested, child)
	}

	value, source, found := r.store.Lookup(name)
	if !found {
		attr := decl.Attr("default")
		if attr == nil {
			return cty.NilVal, &vars.MissingVariableError{Name: name}
		}
		defaultVal, err := r.evalExpr(attr.Expr)
		if err != nil {
			return cty.NilVal, err
		}
		value, source = defaultVal, vars.SourceDefault
	}

	checked, err := applyDeclaredType(name, declaredType, value, source)
	if err != nil {
		return cty.NilVal, err
	}

	variable.Value = checked
	variable.Source = source
	r.variables[name] = variable
	return checked, nil
}

// applyDeclaredType converts or rejects a value against the variable's
// declared type keyword.
func applyDeclaredType(name, declared string, value cty.Value, source vars.Source) (cty.Value, error) {
	if !ctyval.ValidKeyword(declared) {
		// Invalid keyword: schema validation owns the report; accept as-is.
		return value, nil
	}
	mismatch := &vars.TypeMismatchError{
		Name:     name,
		Declared: declared,
		Actual:   ctyval.KeywordForValue(value),
		Source:   source,
	}
	switch declared {
	case "string":
		if converted, err := convert.Convert(value, cty.String); err == nil {
			return converted, nil
		}
	case "number":
		if converted, err := convert.Convert(value, cty.Number); err == nil {
			return converted, nil
		}
	case "bool":
		if converted, err := convert.Convert(value, cty.Bool); err == nil {
			return converted, nil
		}
	default:
		if ctyval.MatchesKeyword(value, declared) {
			return value, nil
		}
	}
	return cty.NilVal, mismatch
}

// resolveBlockCell resolves one labeled block and its visible reference
// object.
func (r *Resolver) resolveBlockCell(key string) (cty.Value, error) {
	if obj, ok := r.refObjects[key]; ok {
		return obj, nil
	}

	if err := r.enter(key); err != nil {
		return cty.NilVal, err
	}
	defer r.leave(key)

	block := r.blockCells[key]
	rb, obj, err := r.resolveBlockBody(block)
	if err != nil {
		return cty.NilVal, err
	}

	obj = withIdentity(rb, obj)
	r.blocks[key] = rb
	r.refObjects[key] = obj
	return obj, nil
}

// withIdentity augments a block's reference object with identity attributes
// so that later reference binding can map a value back to its block.
func withIdentity(rb *Block, obj cty.Value) cty.Value {
	attrs := make(map[string]cty.Value)
	if !obj.IsNull() && obj.Type().IsObjectType() {
		for it := obj.ElementIterator(); it.Next(); {
			k, v := it.Element()
			attrs[k.AsString()] = v
		}
	}
	switch rb.Type {
	case rootModel, rootAgent:
		attrs["id"] = cty.StringVal(rb.Labels[0])
	case rootPlugin:
		attrs["kind"] = cty.StringVal(rb.Labels[0])
		attrs["name"] = cty.StringVal(rb.Labels[1])
	}
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}

// resolveBlockBody evaluates every attribute and nested block, returning the
// resolved block and its cty object form.
func (r *Resolver) resolveBlockBody(block *document.Block) (*Block, cty.Value, error) {
	rb := &Block{
		Type:     block.Type,
		Labels:   block.Labels,
		Attrs:    make(map[string]cty.Value, len(block.Attributes)),
		DefRange: block.DefRange,
	}

	attrNames := make([]string, 0, len(block.Attributes))
	for name := range block.Attributes {
		attrNames = append(attrNames, name)
	}
	sort.Strings(attrNames)

	objAttrs := make(map[string]cty.Value)
	for _, name := range attrNames {
		val, err := r.evalExpr(block.Attributes[name].Expr)
		if err != nil {
			return nil, cty.NilVal, err
		}
		rb.Attrs[name] = val
		objAttrs[name] = val
	}

	nestedObjs := make(map[string][]cty.Value)
	var nestedOrder []string
	for _, nb := range block.Nested {
		child, childObj, err := r.resolveBlockBody(nb)
		if err != nil {
			return nil, cty.NilVal, err
		}
		rb.Nested = append(rb.Nested, child)
		if _, seen := nestedObjs[nb.Type]; !seen {
			nestedOrder = append(nestedOrder, nb.Type)
		}
		nestedObjs[nb.Type] = append(nestedObjs[nb.Type], childObj)
	}
	for _, name := range nestedOrder {
		objs := nestedObjs[name]
		// A lone nested block reads as an object; repetition as a tuple.
		// Cardinality against the schema is the validator's concern.
		if len(objs) == 1 {
			objAttrs[name] = objs[0]
		} else {
			objAttrs[name] = cty.TupleVal(objs)
		}
	}

	if len(objAttrs) == 0 {
		return rb, cty.EmptyObjectVal, nil
	}
	return rb, cty.ObjectVal(objAttrs), nil
}

// evalExpr resolves every reference inside an expression and evaluates it.
// Fully literal expressions take the fast path with an empty scope.
func (r *Resolver) evalExpr(expr hcl.Expression) (cty.Value, error) {
	for _, traversal := range expr.Variables() {
		if err := r.resolveDependency(traversal); err != nil {
			return cty.NilVal, err
		}
	}

	val, diags := expr.Value(r.evalContext())
	if diags.HasErrors() {
		return cty.NilVal, &EvalError{Subject: expr.Range(), Diags: diags}
	}
	return val, nil
}

// resolveDependency resolves the cell a traversal points into.
func (r *Resolver) resolveDependency(traversal hcl.Traversal) error {
	parts := traversalParts(traversal)
	subject := traversal.SourceRange()

	switch parts[0] {
	case rootVar:
		if len(parts) < 2 {
			return &UnresolvedReferenceError{Ref: rootVar, Subject: subject}
		}
		_, err := r.resolveVariable(parts[1])
		return err
	case rootModel, rootAgent:
		if len(parts) < 2 {
			return &UnresolvedReferenceError{Ref: parts[0], Subject: subject}
		}
		key := parts[0] + "." + parts[1]
		if _, ok := r.blockCells[key]; !ok {
			return &UnresolvedReferenceError{Ref: key, Subject: subject}
		}
		_, err := r.resolveBlockCell(key)
		return err
	case rootPlugin:
		if len(parts) < 3 {
			return &UnresolvedReferenceError{Ref: joinParts(parts), Subject: subject}
		}
		key := rootPlugin + "." + parts[1] + "." + parts[2]
		if _, ok := r.blockCells[key]; !ok {
			return &UnresolvedReferenceError{Ref: key, Subject: subject}
		}
		_, err := r.resolveBlockCell(key)
		return err
	case rootRuntime:
		if _, ok := r.blockCells[rootRuntime]; !ok {
			return &UnresolvedReferenceError{Ref: rootRuntime, Subject: subject}
		}
		_, err := r.resolveBlockCell(rootRuntime)
		return err
	default:
		return &UnresolvedReferenceError{Ref: joinParts(parts), Subject: subject}
	}
}

// evalContext exposes every cell resolved so far. Dependencies of the
// expression at hand are guaranteed present; extra entries are harmless.
func (r *Resolver) evalContext() *hcl.EvalContext {
	varVals := make(map[string]cty.Value, len(r.variables))
	for name, v := range r.variables {
		varVals[name] = v.Value
	}

	scopes := map[string]map[string]cty.Value{
		rootModel: {},
		rootAgent: {},
	}
	pluginKinds := make(map[string]map[string]cty.Value)
	var runtimeObj cty.Value

	for key, obj := range r.refObjects {
		rb := r.blocks[key]
		switch rb.Type {
		case rootModel, rootAgent:
			scopes[rb.Type][rb.Labels[0]] = obj
		case rootPlugin:
			kind := rb.Labels[0]
			if pluginKinds[kind] == nil {
				pluginKinds[kind] = make(map[string]cty.Value)
			}
			pluginKinds[kind][rb.Labels[1]] = obj
		case rootRuntime:
			runtimeObj = obj
		}
	}

	variables := map[string]cty.Value{
		rootVar:   objectOrEmpty(varVals),
		rootModel: objectOrEmpty(scopes[rootModel]),
		rootAgent: objectOrEmpty(scopes[rootAgent]),
	}
	kindObjs := make(map[string]cty.Value, len(pluginKinds))
	for kind, plugins := range pluginKinds {
		kindObjs[kind] = objectOrEmpty(plugins)
	}
	variables[rootPlugin] = objectOrEmpty(kindObjs)
	if runtimeObj != cty.NilVal {
		variables[rootRuntime] = runtimeObj
	}

	return &hcl.EvalContext{Variables: variables}
}

func objectOrEmpty(attrs map[string]cty.Value) cty.Value {
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}

// traversalParts flattens a traversal's root and attribute steps into names,
// stopping at the first index step.
func traversalParts(traversal hcl.Traversal) []string {
	var parts []string
	for _, step := range traversal {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			parts = append(parts, s.Name)
		case hcl.TraverseAttr:
			parts = append(parts, s.Name)
		default:
			return parts
		}
	}
	return parts
}

func joinParts(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "." + p
	}
	return out
}
