package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) index(c echo.Context) error {
	return c.HTML(http.StatusOK, indexPage)
}

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>ragd</title>
<style>
  body { font-family: sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
  section { margin-bottom: 2rem; }
  input, button, textarea { font: inherit; padding: 0.4rem; }
  #answer { white-space: pre-wrap; background: #f4f4f4; padding: 1rem; }
  li button { margin-left: 0.5rem; }
</style>
</head>
<body>
<h1>ragd</h1>

<section id="auth">
  <h2>Sign in</h2>
  <input id="username" placeholder="username">
  <input id="password" type="password" placeholder="password">
  <button onclick="register()">Register</button>
  <button onclick="login()">Login</button>
  <span id="auth-status"></span>
</section>

<section>
  <h2>Documents</h2>
  <input id="file" type="file" accept=".txt,.md,.html,.htm">
  <button onclick="upload()">Upload</button>
  <ul id="documents"></ul>
</section>

<section>
  <h2>Ask</h2>
  <textarea id="question" rows="3" cols="60" placeholder="Ask about your documents"></textarea>
  <br><button onclick="ask()">Ask</button>
  <div id="answer"></div>
</section>

<script>
let token = "";

async function post(url, body) {
  const res = await fetch(url, {
    method: "POST",
    headers: token ? { "Authorization": "Bearer " + token } : {},
    body,
  });
  const data = await res.json();
  if (!res.ok) throw new Error(data.detail || res.statusText);
  return data;
}

function creds() {
  const form = new URLSearchParams();
  form.set("username", document.getElementById("username").value);
  form.set("password", document.getElementById("password").value);
  return form;
}

async function register() {
  try {
    await post("/register", creds());
    document.getElementById("auth-status").textContent = "registered, now log in";
  } catch (e) { document.getElementById("auth-status").textContent = e.message; }
}

async function login() {
  try {
    const data = await post("/login", creds());
    token = data.access_token;
    document.getElementById("auth-status").textContent = "logged in";
    await refresh();
  } catch (e) { document.getElementById("auth-status").textContent = e.message; }
}

async function refresh() {
  const res = await fetch("/documents", { headers: { "Authorization": "Bearer " + token } });
  const docs = await res.json();
  const list = document.getElementById("documents");
  list.innerHTML = "";
  for (const d of docs) {
    const li = document.createElement("li");
    li.textContent = d.filename + " (" + d.uploaded_at + ")";
    const del = document.createElement("button");
    del.textContent = "delete";
    del.onclick = async () => {
      await fetch("/documents/" + d.id, {
        method: "DELETE",
        headers: { "Authorization": "Bearer " + token },
      });
      await refresh();
    };
    li.appendChild(del);
    list.appendChild(li);
  }
}

async function upload() {
  const input = document.getElementById("file");
  if (!input.files.length) return;
  const form = new FormData();
  form.append("file", input.files[0]);
  try {
    await post("/upload", form);
    await refresh();
  } catch (e) { alert(e.message); }
}

async function ask() {
  const form = new URLSearchParams();
  form.set("question", document.getElementById("question").value);
  try {
    const data = await post("/query", form);
    document.getElementById("answer").textContent = data.answer;
  } catch (e) { document.getElementById("answer").textContent = e.message; }
}
</script>
</body>
</html>
`
