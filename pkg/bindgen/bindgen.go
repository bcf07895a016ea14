// Package bindgen generates typed wrapper functions over handle member
// calls. Each wrapper is declared once with its result kind and reduces to
// a single Registry.CallMember.
package bindgen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"jsbind/pkg/handle"
	"jsbind/pkg/member"
)

// Config controls code generation.
type Config struct {
	// Package is the generated package name when the manifest names none.
	Package string
	// Import paths of the runtime packages the generated code calls.
	HandleImport string
	MemberImport string
	ArgsImport   string
	// Receiver is the name of the handle parameter of every wrapper.
	Receiver string
}

// DefaultConfig returns the configuration used by `jsbind gen`.
func DefaultConfig() *Config {
	return &Config{
		Package:      "bindings",
		HandleImport: "jsbind/pkg/handle",
		MemberImport: "jsbind/pkg/member",
		ArgsImport:   "jsbind/pkg/args",
		Receiver:     "h",
	}
}

// Generate renders the wrappers described by m as Go source.
func Generate(cfg *Config, m *Manifest) ([]byte, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	pkg := m.Package
	if pkg == "" {
		pkg = cfg.Package
	}
	g := &generator{cfg: cfg, m: m, kind: mustKind(m.Handle)}
	g.prefix = lowerFirst(m.Handle)
	g.registry = m.Registry
	if g.registry == "" {
		g.registry = g.prefix + "Wrappers"
	}

	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by jsbind gen. DO NOT EDIT.")
	f.ImportName(cfg.HandleImport, "handle")
	f.ImportName(cfg.MemberImport, "member")
	f.ImportName(cfg.ArgsImport, "args")

	f.Commentf("%s holds the result kinds of the %s wrappers below.", g.registry, m.Handle)
	f.Var().Id(g.registry).Op("=").Qual(cfg.HandleImport, "NewRegistry").Call()
	f.Line()

	decls := make([]jen.Code, 0, len(m.Methods))
	for _, meth := range m.Methods {
		decls = append(decls, g.declaration(meth))
	}
	f.Var().Defs(decls...)

	for _, meth := range m.Methods {
		f.Line()
		g.wrapper(f, meth)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("bindgen: rendering %s wrappers: %w", m.Handle, err)
	}
	return buf.Bytes(), nil
}

type generator struct {
	cfg      *Config
	m        *Manifest
	kind     handle.Kind
	prefix   string
	registry string
}

func mustKind(name string) handle.Kind {
	k, err := handle.ParseKind(name)
	if err != nil {
		panic(err)
	}
	return k
}

func (g *generator) pathVar(meth Method) string { return g.prefix + meth.Go + "Path" }

// pathExpr emits member.Root("a").Member("b")... for a parsed path.
func (g *generator) pathExpr(p *member.Path) *jen.Statement {
	segs := p.Segments()
	stmt := jen.Qual(g.cfg.MemberImport, "Root").Call(jen.Lit(segs[0].Name()))
	for _, seg := range segs[1:] {
		stmt = stmt.Dot("Member").Call(jen.Lit(seg.Name()))
	}
	return stmt
}

func (g *generator) declaration(meth Method) jen.Code {
	p := member.MustParse(meth.JS)
	kind, _ := meth.resultKind()
	return jen.Id(g.pathVar(meth)).Op("=").Id(g.registry).Dot("Declare").Call(
		g.pathExpr(p),
		jen.Qual(g.cfg.HandleImport, "Kind"+kind.String()),
	)
}

func (g *generator) wrapper(f *jen.File, meth Method) {
	p := member.MustParse(meth.JS)
	kind, _ := meth.resultKind()
	recv := g.cfg.Receiver

	callArgs := make([]string, len(meth.Params))
	copy(callArgs, meth.Params)
	if meth.Variadic {
		callArgs[len(callArgs)-1] = "..." + callArgs[len(callArgs)-1]
	}
	if meth.Doc != "" {
		f.Comment(meth.Go + " " + meth.Doc)
	} else {
		f.Commentf("%s calls %s(%s).", meth.Go, p.Expr(recv), strings.Join(callArgs, ", "))
	}

	params := []jen.Code{jen.Id(recv).Qual(g.cfg.HandleImport, g.m.Handle)}
	for i, name := range meth.Params {
		if meth.Variadic && i == len(meth.Params)-1 {
			params = append(params, jen.Id(name).Op("...").Any())
			continue
		}
		params = append(params, jen.Id(name).Any())
	}

	list := g.argsList(meth)
	convert := jen.List(jen.Id("list"), jen.Err()).Op(":=").Add(list)

	if kind == handle.KindObject {
		f.Func().Id(meth.Go).Params(params...).Params(
			jen.Qual(g.cfg.HandleImport, "Handle"), jen.Error(),
		).Block(
			convert,
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(g.call(meth)),
		)
		return
	}

	resultType := jen.Qual(g.cfg.HandleImport, kind.String())
	f.Func().Id(meth.Go).Params(params...).Params(resultType.Clone(), jen.Error()).Block(
		convert,
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(resultType.Clone().Values(), jen.Err()),
		),
		jen.List(jen.Id("res"), jen.Err()).Op(":=").Add(g.call(meth)),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(resultType.Clone().Values(), jen.Err()),
		),
		jen.List(jen.Id("out"), jen.Id("_")).Op(":=").Qual(g.cfg.HandleImport, "As").Types(resultType.Clone()).Call(jen.Id("res")),
		jen.Return(jen.Id("out"), jen.Nil()),
	)
}

func (g *generator) call(meth Method) *jen.Statement {
	return jen.Id(g.registry).Dot("CallMember").Call(jen.Id(g.cfg.Receiver), jen.Id(g.pathVar(meth)), jen.Id("list"))
}

// argsList emits args.From(h.Realm(), a, b) or, for variadic tails,
// args.From(h.Realm(), append([]any{a}, rest...)...).
func (g *generator) argsList(meth Method) *jen.Statement {
	from := func(ids ...jen.Code) *jen.Statement {
		realm := jen.Id(g.cfg.Receiver).Dot("Realm").Call()
		return jen.Qual(g.cfg.ArgsImport, "From").Call(append([]jen.Code{realm}, ids...)...)
	}
	fixed := meth.Params
	if meth.Variadic {
		fixed = meth.Params[:len(meth.Params)-1]
	}
	ids := make([]jen.Code, len(fixed))
	for i, name := range fixed {
		ids[i] = jen.Id(name)
	}
	if !meth.Variadic {
		return from(ids...)
	}
	rest := jen.Id(meth.Params[len(meth.Params)-1])
	if len(fixed) == 0 {
		return from(rest.Op("..."))
	}
	return from(jen.Append(jen.Index().Any().Values(ids...), rest.Op("...")).Op("..."))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
