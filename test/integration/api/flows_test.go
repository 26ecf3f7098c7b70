// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

//go:build integration

package api_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/tasktrack/tasktrack/internal/api"
)

func avatarUpload(token string) response {
	GinkgoHelper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	img.Set(3, 3, color.RGBA{R: 200, A: 255})
	var pic bytes.Buffer
	Expect(png.Encode(&pic, img)).To(Succeed())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("avatar", "me.png")
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write(pic.Bytes())
	Expect(err).NotTo(HaveOccurred())
	Expect(mw.Close()).To(Succeed())

	req, err := http.NewRequest(http.MethodPost, server.URL+"/users/me/avatar", &body)
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return do(req, token)
}

var _ = Describe("Accounts", func() {
	It("signs up, logs in with email or handle, and reads the profile", func() {
		user, token := signup("alice")
		Expect(user.Handle).To(Equal("alice"))
		Expect(token).NotTo(BeEmpty())

		byEmail := send(http.MethodPost, "/users/login", map[string]any{"email": "ALICE@example.com", "password": "hunter22"}, "")
		Expect(byEmail.Status).To(Equal(http.StatusOK))
		byHandle := send(http.MethodPost, "/users/login", map[string]any{"handle": "alice", "password": "hunter22"}, "")
		Expect(byHandle.Status).To(Equal(http.StatusOK))

		me := send(http.MethodGet, "/users/me", nil, token)
		Expect(me.Status).To(Equal(http.StatusOK))
		Expect(string(me.Body)).NotTo(ContainSubstring("password"))
		var got api.UserDTO
		me.decode(&got)
		Expect(got.ID).To(Equal(user.ID))
	})

	It("rejects a duplicate email with a conflict", func() {
		signup("alice")
		resp := send(http.MethodPost, "/users/signup", map[string]any{
			"name": "Other", "handle": "other", "age": 20, "email": "alice@example.com", "password": "hunter22",
		}, "")
		Expect(resp.Status).To(Equal(http.StatusConflict))
		Expect(resp.message().Error).To(ContainSubstring("email"))
	})

	It("rejects a wrong password", func() {
		signup("alice")
		resp := send(http.MethodPost, "/users/login", map[string]any{"handle": "alice", "password": "wrong-one"}, "")
		Expect(resp.Status).To(Equal(http.StatusBadRequest))
	})

	It("logs out only the presented session", func() {
		_, first := signup("alice")
		login := send(http.MethodPost, "/users/login", map[string]any{"handle": "alice", "password": "hunter22"}, "")
		var second api.AuthResponse
		login.decode(&second)

		Expect(send(http.MethodPost, "/users/logout", nil, first).Status).To(Equal(http.StatusOK))

		Expect(send(http.MethodGet, "/users/me", nil, first).Status).To(Equal(http.StatusUnauthorized))
		Expect(send(http.MethodGet, "/users/me", nil, second.Token).Status).To(Equal(http.StatusOK))
	})

	It("terminates every session", func() {
		_, first := signup("alice")
		login := send(http.MethodPost, "/users/login", map[string]any{"handle": "alice", "password": "hunter22"}, "")
		var second api.AuthResponse
		login.decode(&second)

		resp := send(http.MethodPost, "/users/terminate-all-sessions", nil, first)
		Expect(resp.Status).To(Equal(http.StatusOK))
		Expect(resp.message().Content).To(Equal("All sessions terminated successfully."))

		Expect(send(http.MethodGet, "/users/me", nil, first).Status).To(Equal(http.StatusUnauthorized))
		Expect(send(http.MethodGet, "/users/me", nil, second.Token).Status).To(Equal(http.StatusUnauthorized))
	})

	It("updates the profile and changes the password", func() {
		_, token := signup("alice")

		resp := send(http.MethodPatch, "/users/me", map[string]any{"name": "Alice Cooper", "password": "new-secret"}, token)
		Expect(resp.Status).To(Equal(http.StatusOK))
		var got api.UserDTO
		resp.decode(&got)
		Expect(got.Name).To(Equal("Alice Cooper"))

		old := send(http.MethodPost, "/users/login", map[string]any{"handle": "alice", "password": "hunter22"}, "")
		Expect(old.Status).To(Equal(http.StatusBadRequest))
		fresh := send(http.MethodPost, "/users/login", map[string]any{"handle": "alice", "password": "new-secret"}, "")
		Expect(fresh.Status).To(Equal(http.StatusOK))
	})

	It("deletes the account together with its tasks and sessions", func() {
		_, token := signup("alice")
		createTask(token, "one")
		createTask(token, "two")

		Expect(send(http.MethodDelete, "/users/me", nil, token).Status).To(Equal(http.StatusOK))

		Expect(send(http.MethodGet, "/tasks", nil, token).Status).To(Equal(http.StatusUnauthorized))
		login := send(http.MethodPost, "/users/login", map[string]any{"handle": "alice", "password": "hunter22"}, "")
		Expect(login.Status).To(Equal(http.StatusBadRequest))

		_, again := signup("alice")
		list := send(http.MethodGet, "/tasks", nil, again)
		var tasks []api.TaskDTO
		list.decode(&tasks)
		Expect(tasks).To(BeEmpty())
	})

	It("stores a normalized avatar and serves it publicly", func() {
		user, token := signup("alice")

		Expect(send(http.MethodGet, "/users/"+user.ID+"/avatar", nil, "").Status).To(Equal(http.StatusNotFound))

		up := avatarUpload(token)
		Expect(up.Status).To(Equal(http.StatusOK), string(up.Body))

		got := send(http.MethodGet, "/users/"+user.ID+"/avatar", nil, "")
		Expect(got.Status).To(Equal(http.StatusOK))
		Expect(got.Header.Get("Content-Type")).To(Equal("image/png"))
		cfg, err := png.DecodeConfig(bytes.NewReader(got.Body))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Width).To(Equal(250))
		Expect(cfg.Height).To(Equal(250))

		Expect(send(http.MethodDelete, "/users/me/avatar", nil, token).Status).To(Equal(http.StatusOK))
		Expect(send(http.MethodGet, "/users/"+user.ID+"/avatar", nil, "").Status).To(Equal(http.StatusNotFound))
	})
})

var _ = Describe("Tasks", func() {
	It("requires authentication", func() {
		resp := send(http.MethodGet, "/tasks", nil, "")
		Expect(resp.Status).To(Equal(http.StatusUnauthorized))
		Expect(send(http.MethodGet, "/tasks", nil, "garbage").Status).To(Equal(http.StatusUnauthorized))
	})

	It("runs the full task lifecycle", func() {
		user, token := signup("alice")

		created := createTask(token, "  buy milk  ")
		Expect(created.Text).To(Equal("buy milk"))
		Expect(created.Owner).To(Equal(user.ID))
		Expect(created.Completed).To(BeFalse())

		patched := send(http.MethodPatch, "/tasks/"+created.ID, map[string]any{"completed": true}, token)
		Expect(patched.Status).To(Equal(http.StatusOK))
		var updated api.TaskDTO
		patched.decode(&updated)
		Expect(updated.Completed).To(BeTrue())
		Expect(updated.Text).To(Equal("buy milk"))

		got := send(http.MethodGet, "/tasks/"+created.ID, nil, token)
		Expect(got.Status).To(Equal(http.StatusOK))

		deleted := send(http.MethodDelete, "/tasks/"+created.ID, nil, token)
		Expect(deleted.Status).To(Equal(http.StatusOK))
		Expect(send(http.MethodGet, "/tasks/"+created.ID, nil, token).Status).To(Equal(http.StatusNotFound))
	})

	It("rejects unknown update fields", func() {
		_, token := signup("alice")
		created := createTask(token, "walk")

		resp := send(http.MethodPatch, "/tasks/"+created.ID, map[string]any{"owner": "someone"}, token)
		Expect(resp.Status).To(Equal(http.StatusBadRequest))
	})

	It("isolates tasks between users", func() {
		_, alice := signup("alice")
		_, bob := signup("bobby")
		secret := createTask(alice, "alice only")

		Expect(send(http.MethodGet, "/tasks/"+secret.ID, nil, bob).Status).To(Equal(http.StatusNotFound))
		Expect(send(http.MethodPatch, "/tasks/"+secret.ID, map[string]any{"text": "mine now"}, bob).Status).To(Equal(http.StatusNotFound))
		Expect(send(http.MethodDelete, "/tasks/"+secret.ID, nil, bob).Status).To(Equal(http.StatusNotFound))

		var bobs []api.TaskDTO
		send(http.MethodGet, "/tasks", nil, bob).decode(&bobs)
		Expect(bobs).To(BeEmpty())

		Expect(send(http.MethodGet, "/tasks/"+secret.ID, nil, alice).Status).To(Equal(http.StatusOK))
	})

	It("filters, sorts and pages the listing", func() {
		_, token := signup("alice")
		for _, text := range []string{"c", "a", "b", "d"} {
			createTask(token, text)
		}
		for _, t := range []string{"a", "d"} {
			var list []api.TaskDTO
			send(http.MethodGet, "/tasks?sortBy=text", nil, token).decode(&list)
			for _, item := range list {
				if item.Text == t {
					Expect(send(http.MethodPatch, "/tasks/"+item.ID, map[string]any{"completed": true}, token).Status).
						To(Equal(http.StatusOK))
				}
			}
		}

		textsOf := func(path string) []string {
			GinkgoHelper()
			resp := send(http.MethodGet, path, nil, token)
			Expect(resp.Status).To(Equal(http.StatusOK), string(resp.Body))
			var list []api.TaskDTO
			resp.decode(&list)
			out := make([]string, 0, len(list))
			for _, item := range list {
				out = append(out, item.Text)
			}
			return out
		}

		Expect(textsOf("/tasks")).To(Equal([]string{"c", "a", "b", "d"}))
		Expect(textsOf("/tasks?sortBy=text:desc")).To(Equal([]string{"d", "c", "b", "a"}))
		Expect(textsOf("/tasks?completed=true&sortBy=text")).To(Equal([]string{"a", "d"}))
		Expect(textsOf("/tasks?sortBy=text&limit=2&skip=2")).To(Equal([]string{"c", "d"}))

		bad := send(http.MethodGet, "/tasks?sortBy=owner", nil, token)
		Expect(bad.Status).To(Equal(http.StatusBadRequest))
	})

	It("deletes all of the caller's tasks", func() {
		_, alice := signup("alice")
		_, bob := signup("bobby")
		createTask(alice, "one")
		createTask(alice, "two")
		createTask(bob, "keep")

		resp := send(http.MethodDelete, "/tasks", nil, alice)
		Expect(resp.Status).To(Equal(http.StatusOK))
		Expect(resp.message().Content).To(Equal("All user's Tasks removed successfully."))

		var left []api.TaskDTO
		send(http.MethodGet, "/tasks", nil, bob).decode(&left)
		Expect(left).To(HaveLen(1))
	})
})
