package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"mini-linkedin/internal/client"
	"mini-linkedin/internal/domain"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	credsPath := os.Getenv("SESSION_FILE")
	if credsPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Printf("no se pudo resolver el home: %v\n", err)
			os.Exit(1)
		}
		credsPath = filepath.Join(home, ".mini-linkedin", "session.json")
	}

	api := client.New(baseURL)
	holder := client.NewSessionHolder(api, client.NewFileCredentialsStore(credsPath))

	if err := holder.Restore(ctx); err != nil {
		fmt.Printf("no se pudo restaurar la sesion: %v\n", err)
	}
	if user, ok := holder.CurrentUser(); ok {
		fmt.Printf("Sesion restaurada como %s\n", user.Name)
	}

	for {
		if holder.State() == client.StateAuthenticated {
			runAuthenticatedMenu(ctx, reader, api, holder)
		} else {
			runAnonymousMenu(ctx, reader, api, holder)
		}
	}
}

func runAnonymousMenu(ctx context.Context, reader *bufio.Reader, api *client.Client, holder *client.SessionHolder) {
	fmt.Println("\n===== Mini LinkedIn =====")
	fmt.Println("[1] Iniciar sesion")
	fmt.Println("[2] Registrarse")
	fmt.Println("[3] Ver feed")
	fmt.Println("[4] Salir")
	fmt.Print("Selecciona una opcion: ")

	switch readLine(reader) {
	case "1":
		email := prompt(reader, "Email: ")
		password := prompt(reader, "Password: ")
		if err := holder.Login(ctx, email, password); err != nil {
			fmt.Printf("Login fallido: %s\n", apiMessage(err))
			return
		}
		if user, ok := holder.CurrentUser(); ok {
			fmt.Printf("Bienvenido, %s\n", user.Name)
		}
	case "2":
		name := prompt(reader, "Nombre: ")
		email := prompt(reader, "Email: ")
		password := prompt(reader, "Password (minimo 6): ")
		bio := prompt(reader, "Bio (opcional): ")
		if err := holder.Register(ctx, name, email, password, bio); err != nil {
			fmt.Printf("Registro fallido: %s\n", apiMessage(err))
			return
		}
		fmt.Println("Cuenta creada.")
	case "3":
		feedLoop(ctx, reader, api, holder)
	case "4":
		os.Exit(0)
	default:
		fmt.Println("Opcion invalida.")
	}
}

func runAuthenticatedMenu(ctx context.Context, reader *bufio.Reader, api *client.Client, holder *client.SessionHolder) {
	user, _ := holder.CurrentUser()
	fmt.Printf("\n--- %s ---\n", user.Name)
	fmt.Println("[1] Ver feed")
	fmt.Println("[2] Publicar")
	fmt.Println("[3] Mi perfil")
	fmt.Println("[4] Buscar usuarios")
	fmt.Println("[5] Editar perfil")
	fmt.Println("[6] Cerrar sesion")
	fmt.Println("[7] Salir")
	fmt.Print("Selecciona una opcion: ")

	switch readLine(reader) {
	case "1":
		feedLoop(ctx, reader, api, holder)
	case "2":
		content := prompt(reader, "Contenido del post: ")
		if _, err := api.CreatePost(ctx, content); err != nil {
			fmt.Printf("No se pudo publicar: %s\n", apiMessage(err))
			return
		}
		fmt.Println("Publicado.")
	case "3":
		profileView(ctx, api, user.ID)
	case "4":
		query := prompt(reader, "Buscar por nombre (vacio = todos): ")
		users, err := api.SearchUsers(ctx, query)
		if err != nil {
			fmt.Printf("Busqueda fallida: %s\n", apiMessage(err))
			return
		}
		for _, u := range users {
			fmt.Printf("- %s (%s)\n", u.Name, u.Email)
		}
		if len(users) == 0 {
			fmt.Println("Sin resultados.")
		}
	case "5":
		name := prompt(reader, "Nombre: ")
		bio := prompt(reader, "Bio: ")
		updated, err := api.UpdateProfile(ctx, name, bio)
		if err != nil {
			fmt.Printf("No se pudo actualizar: %s\n", apiMessage(err))
			return
		}
		fmt.Printf("Perfil actualizado: %s\n", updated.Name)
	case "6":
		holder.Logout()
		fmt.Println("Sesion cerrada.")
	case "7":
		os.Exit(0)
	default:
		fmt.Println("Opcion invalida.")
	}
}

// feedLoop muestra el feed y aplica mutaciones. Crear y borrar refrescan la
// lista completa; like y comentario parchean el post con el sub-estado que
// devuelve el servidor.
func feedLoop(ctx context.Context, reader *bufio.Reader, api *client.Client, holder *client.SessionHolder) {
	posts, err := api.ListPosts(ctx)
	if err != nil {
		fmt.Printf("No se pudo cargar el feed: %s\n", apiMessage(err))
		return
	}

	for {
		if len(posts) == 0 {
			fmt.Println("El feed esta vacio.")
			return
		}
		viewer, _ := holder.CurrentUser()
		fmt.Println("\n---- Feed ----")
		for i, p := range posts {
			printPost(i+1, p, viewer.ID)
		}
		if holder.State() != client.StateAuthenticated {
			fmt.Print("[Enter] volver: ")
			readLine(reader)
			return
		}

		fmt.Print("[L n] like, [C n] comentar, [D n] borrar, [Enter] volver: ")
		line := readLine(reader)
		if line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			fmt.Println("Comando invalido.")
			continue
		}
		idx, err := strconv.Atoi(parts[1])
		if err != nil || idx < 1 || idx > len(posts) {
			fmt.Println("Numero de post invalido.")
			continue
		}
		post := &posts[idx-1]

		switch strings.ToUpper(parts[0]) {
		case "L":
			state, err := api.LikePost(ctx, post.ID)
			if err != nil {
				fmt.Printf("Like fallido: %s\n", apiMessage(err))
				continue
			}
			patchLikes(post, viewer.ID, state)
			fmt.Printf("Likes: %d\n", state.Likes)
		case "C":
			text := prompt(reader, "Comentario: ")
			comments, err := api.AddComment(ctx, post.ID, text)
			if err != nil {
				fmt.Printf("Comentario fallido: %s\n", apiMessage(err))
				continue
			}
			post.Comments = comments
		case "D":
			if err := api.DeletePost(ctx, post.ID); err != nil {
				fmt.Printf("No se pudo borrar: %s\n", apiMessage(err))
				continue
			}
			if posts, err = api.ListPosts(ctx); err != nil {
				fmt.Printf("No se pudo refrescar el feed: %s\n", apiMessage(err))
				return
			}
		default:
			fmt.Println("Comando invalido.")
		}
	}
}

func profileView(ctx context.Context, api *client.Client, userID string) {
	user, err := api.GetUser(ctx, userID)
	if err != nil {
		fmt.Printf("No se pudo cargar el perfil: %s\n", apiMessage(err))
		return
	}
	fmt.Printf("\n%s (%s)\n", user.Name, user.Email)
	if user.Bio != "" {
		fmt.Println(user.Bio)
	}

	posts, err := api.ListUserPosts(ctx, userID)
	if err != nil {
		fmt.Printf("No se pudieron cargar los posts: %s\n", apiMessage(err))
		return
	}
	fmt.Printf("Posts: %d\n", len(posts))
	for i, p := range posts {
		printPost(i+1, p, userID)
	}
}

func printPost(n int, p domain.Post, viewerID string) {
	marker := " "
	if viewerID != "" && p.LikedBy(viewerID) {
		marker = "*"
	}
	fmt.Printf("[%d] %s - %s\n", n, p.Author.Name, p.CreatedAt.Local().Format("02/01 15:04"))
	fmt.Printf("    %s\n", p.Content)
	fmt.Printf("    %s%d likes, %d comentarios\n", marker, len(p.Likes), len(p.Comments))
	for _, c := range p.Comments {
		fmt.Printf("      %s: %s\n", c.User.Name, c.Text)
	}
}

func patchLikes(post *domain.Post, viewerID string, state client.LikeState) {
	likes := make([]string, 0, state.Likes)
	for _, id := range post.Likes {
		if id != viewerID {
			likes = append(likes, id)
		}
	}
	if state.IsLiked {
		likes = append(likes, viewerID)
	}
	post.Likes = likes
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	return readLine(reader)
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func apiMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
