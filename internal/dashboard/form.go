package dashboard

import (
	"net/http"

	"github.com/gorilla/schema"

	actiondomain "github.com/AlibekovAA/cloudrun-demo/internal/action/domain"
)

type addUserForm struct {
	Name  string `schema:"userName"`
	Email string `schema:"userEmail"`
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

func decodeForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	return decoder.Decode(dst, r.PostForm)
}

func decodeAddUser(r *http.Request) (addUserForm, error) {
	var f addUserForm
	err := decodeForm(r, &f)
	return f, err
}

func decodeActionForm(r *http.Request) (actiondomain.FormInput, error) {
	var f actiondomain.FormInput
	err := decodeForm(r, &f)
	return f, err
}
