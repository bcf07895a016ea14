package handle

import (
	"jsbind/pkg/args"
	"jsbind/pkg/member"
	"jsbind/pkg/vm"
)

// CallMember resolves path on h, calls the result with h's value as `this`
// and wraps the outcome with the kind registered in r. Every builtin
// wrapper method reduces to this.
func (r *Registry) CallMember(h Handle, path *member.Path, a *args.List) (Handle, error) {
	rt := h.Realm()
	this := h.JSValue()
	ref := path.With(rt, this)
	fn, err := ref.Read()
	if err != nil {
		return nil, err
	}
	if !path.IsRooted() {
		// Qualified paths call with the qualifier's value as receiver.
		if this, err = ref.Base(); err != nil {
			return nil, err
		}
	}
	result, err := vm.Call(fn, this, a.Seal())
	if err != nil {
		return nil, err
	}
	return r.WrapResult(rt, path, result), nil
}

// CallMember is Registry.CallMember on Wrappers.
func CallMember(h Handle, path *member.Path, a *args.List) (Handle, error) {
	return Wrappers.CallMember(h, path, a)
}

// IndexExpr renders computed access of indexExpr on base. Computed access
// is never written as a member path.
func IndexExpr(base, indexExpr string) string {
	return base + "[" + indexExpr + "]"
}
