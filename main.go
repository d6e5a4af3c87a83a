package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/assets"
	"github.com/bloeys/nrend/camera"
	"github.com/bloeys/nrend/config"
	"github.com/bloeys/nrend/engine"
	"github.com/bloeys/nrend/input"
	"github.com/bloeys/nrend/lines"
	"github.com/bloeys/nrend/logging"
	"github.com/bloeys/nrend/materials"
	"github.com/bloeys/nrend/meshes"
	"github.com/bloeys/nrend/postproc"
	"github.com/bloeys/nrend/renderer/rend3d"
	"github.com/bloeys/nrend/shaders"
	"github.com/bloeys/nrend/timing"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	camMoveSpeed = 5
	camRotSpeed  = 0.25

	// How long a damage flash takes to fade out, in seconds
	damageFadeTime = 0.75
)

var (
	skyColor   = color.NRGBA{R: 110, G: 160, B: 220, A: 255}
	groundTint = gglm.NewVec3(0.45, 0.5, 0.45)
	frustumCol = gglm.Vec4{Data: [4]float32{1, 1, 0, 1}}
	boxCol     = gglm.Vec4{Data: [4]float32{1, 0.5, 0, 1}}
)

type Game struct {
	settings config.Settings
	win      *engine.Window
	title    string
	fpsTimer float32

	reloader *shaders.Reloader
	rend     *rend3d.Rend3D
	loader   *assets.Loader

	cam      camera.Camera
	yaw      float32
	pitch    float32
	camSpeed float32
	watchCam camera.Camera

	cubeMesh   meshes.Mesh
	planeMesh  meshes.Mesh
	skyboxMesh meshes.Mesh
	skybox     assets.Cubemap

	cubeMat   *materials.DefaultMaterial
	groundMat *materials.DefaultMaterial
	glassMat  *materials.UnlitMaterial
	lightMat  *materials.SingleColorMaterial

	cubeAngle float32
	lightTime float32

	lineDrawer *lines.LineDrawer
	debug      lines.DebugDrawer

	effects         *postproc.EffectStack
	builtins        *postproc.Builtins
	effectsBypassed bool
}

func main() {

	settings, err := config.Load(config.DefaultPath)
	if err != nil {
		logging.ErrLog.Fatalf("Failed to load settings. Err: %v\n", err)
	}

	err = engine.Init()
	if err != nil {
		logging.ErrLog.Fatalln("Failed to init engine. Err:", err)
	}

	window, err := engine.CreateOpenGLWindowCentered(settings.Window.Title, settings.Window.Width, settings.Window.Height, engine.WindowFlags_RESIZABLE|engine.WindowFlags_ALLOW_HIGHDPI)
	if err != nil {
		logging.ErrLog.Fatalln("Failed to create window. Err: ", err)
	}
	defer window.Destroy()

	engine.SetVSync(settings.Window.VSync)
	window.SetSrgbFramebuffer(settings.Render.SrgbOutput)

	game := &Game{
		settings: settings,
		win:      window,
		title:    settings.Window.Title,
	}

	engine.Run(game, window)
}

func (g *Game) sourceLoader() shaders.SourceLoader {

	dir := g.settings.Shaders.HotReloadDir
	if dir == "" {
		return shaders.EmbeddedSources{}
	}

	sources := &shaders.DirSources{Dir: dir}
	reloader, err := shaders.NewReloader(sources)
	if err != nil {
		logging.WarnLog.Printf("Shader hot reload disabled. Err: %v\n", err)
		return sources
	}

	logging.InfoLog.Printf("Watching '%s' for shader changes\n", dir)
	g.reloader = reloader
	return sources
}

func (g *Game) Init() {

	ctx := g.win.Ctx
	srcLoader := g.sourceLoader()

	var err error
	g.rend, err = rend3d.NewRend3D(ctx, srcLoader)
	if err != nil {
		logging.ErrLog.Fatalf("Failed to create renderer. Err: %v\n", err)
	}

	g.loader, err = assets.NewLoader(ctx)
	if err != nil {
		logging.ErrLog.Fatalf("Failed to create asset loader. Err: %v\n", err)
	}

	g.lineDrawer, err = lines.NewLineDrawer(ctx, srcLoader)
	if err != nil {
		logging.ErrLog.Fatalf("Failed to create line drawer. Err: %v\n", err)
	}
	g.debug = lines.NewDebugDrawer(g.lineDrawer.Batch)

	width, height := g.win.DrawableSize()
	g.effects, err = postproc.NewEffectStack(ctx, srcLoader, width, height)
	if err != nil {
		logging.ErrLog.Fatalf("Failed to create post processing. Err: %v\n", err)
	}

	g.builtins, err = postproc.LoadBuiltins(ctx, srcLoader)
	if err != nil {
		logging.ErrLog.Fatalf("Failed to load post process effects. Err: %v\n", err)
	}
	g.effects.Add(g.builtins.All()...)

	fx := &g.settings.Effects
	g.builtins.Invert.SetFactor(fx.Invert)
	g.builtins.Grayscale.SetFactor(fx.Grayscale)
	g.builtins.Damage.SetFactor(fx.Damage)
	g.builtins.Blur.SetFactor(fx.Blur)
	g.builtins.Blur.Size = fx.BlurSize

	if g.reloader != nil {
		g.rend.Watch(g.reloader)
		g.lineDrawer.Watch(g.reloader)
		g.effects.Watch(g.reloader)
		g.builtins.Watch(g.reloader)
	}

	g.initScene(width, height)
}

func (g *Game) initScene(width, height int32) {

	ctx := g.win.Ctx

	var err error
	if g.cubeMesh, err = meshes.NewCube(ctx); err != nil {
		logging.ErrLog.Fatalf("Failed to create cube mesh. Err: %v\n", err)
	}

	if g.planeMesh, err = meshes.NewPlane(ctx, 40); err != nil {
		logging.ErrLog.Fatalf("Failed to create plane mesh. Err: %v\n", err)
	}

	if g.skyboxMesh, err = meshes.NewSkyboxCube(ctx); err != nil {
		logging.ErrLog.Fatalf("Failed to create skybox mesh. Err: %v\n", err)
	}

	g.skybox = g.loader.CubemapFromColor(skyColor)

	g.cubeMat = g.rend.NewDefaultMaterial("cube")
	g.cubeMat.TintColor = gglm.NewVec3(0.8, 0.3, 0.2)
	g.cubeMat.Shininess = 64

	g.groundMat = g.rend.NewDefaultMaterial("ground")
	g.groundMat.TintColor = groundTint
	g.groundMat.SpecularTint = gglm.NewVec3(0.1, 0.1, 0.1)

	g.glassMat = g.rend.NewUnlitMaterial("glass")
	g.glassMat.TintColor = gglm.NewVec3(0.6, 0.9, 1)
	g.glassMat.Alpha = 0.4

	g.lightMat = g.rend.NewSingleColorMaterial("light_marker", gglm.Vec4{Data: [4]float32{1, 1, 0.8, 1}})

	g.rend.Lights = materials.Lights{
		Ambient: gglm.NewVec3(0.15, 0.15, 0.2),
		Dir: materials.DirLight{
			Dir:   gglm.NewVec3(-0.3, -1, -0.4),
			Color: gglm.NewVec3(0.6, 0.6, 0.55),
		},
		Points: make([]materials.PointLight, g.settings.Render.PointLights),
	}

	pointColors := [materials.MaxPointLights]gglm.Vec3{
		gglm.NewVec3(1, 0.2, 0.2),
		gglm.NewVec3(0.2, 1, 0.2),
		gglm.NewVec3(0.2, 0.2, 1),
		gglm.NewVec3(1, 1, 0.2),
	}
	for i := range g.rend.Lights.Points {
		g.rend.Lights.Points[i].Color = pointColors[i]
		g.rend.Lights.Points[i].Range = 8
	}

	aspect := float32(width) / float32(height)
	camPos := gglm.NewVec3(0, 2, 10)
	camForward := gglm.NewVec3(0, 0, -1)
	worldUp := gglm.NewVec3(0, 1, 0)
	g.cam = camera.NewPerspective(&camPos, &camForward, &worldUp, 0.1, 200, 45*gglm.Deg2Rad, aspect)
	g.yaw = -90 * gglm.Deg2Rad
	g.camSpeed = camMoveSpeed

	// A second camera that is only drawn, to show off frustum lines
	watchPos := gglm.NewVec3(6, 3, 0)
	watchForward := gglm.NewVec3(-1, -0.3, 0)
	g.watchCam = camera.NewPerspective(&watchPos, &watchForward, &worldUp, 0.5, 6, 40*gglm.Deg2Rad, 16.0/9.0)
}

type factorEffect interface {
	Factor() float32
	SetFactor(f float32)
}

func toggleEffect(e factorEffect) {

	if e.Factor() > postproc.AlmostZero {
		e.SetFactor(0)
	} else {
		e.SetFactor(1)
	}
}

func (g *Game) Update() {

	if input.IsQuitClicked() || input.KeyClicked(sdl.K_ESCAPE) {
		engine.Quit()
	}

	if g.reloader != nil {
		g.reloader.Poll()
	}

	dt := timing.DT()
	g.updateCameraLookAround(dt)
	g.updateCameraPos(dt)

	if input.KeyClicked(sdl.K_1) {
		toggleEffect(g.builtins.Invert)
	}

	if input.KeyClicked(sdl.K_2) {
		toggleEffect(g.builtins.Grayscale)
	}

	if input.KeyClicked(sdl.K_3) {
		toggleEffect(g.builtins.Blur)
	}

	// Bypass switches every effect off without losing its factor
	if input.KeyClicked(sdl.K_0) {
		g.effectsBypassed = !g.effectsBypassed
		for _, e := range g.effects.Effects {
			e.SetEnabled(!g.effectsBypassed)
		}
	}

	// Damage flashes on space and fades out on its own
	if input.KeyClicked(sdl.K_SPACE) {
		g.builtins.Damage.SetFactor(1)
	} else if g.builtins.Damage.Enabled() {
		g.builtins.Damage.SetFactor(g.builtins.Damage.Factor() - dt/damageFadeTime)
	}

	if input.KeyClicked(sdl.K_l) {
		g.settings.Render.DebugLines = !g.settings.Render.DebugLines
	}

	g.effects.Update(dt)
	g.updateLights(dt)
	g.cubeAngle += 30 * gglm.Deg2Rad * dt

	g.fpsTimer += dt
	if g.fpsTimer >= 1 {
		g.fpsTimer = 0
		g.win.SDLWin.SetTitle(fmt.Sprintf("%s | FPS: %.0f", g.title, timing.GetAvgFPS()))
	}
}

func (g *Game) updateLights(dt float32) {

	g.lightTime += dt

	points := g.rend.Lights.Points
	for i := range points {
		angle := float64(g.lightTime)*0.5 + float64(i)*2*math.Pi/float64(len(points))
		points[i].Pos = gglm.NewVec3(float32(math.Cos(angle))*5, 1.5, float32(math.Sin(angle))*5)
	}
}

func (g *Game) updateCameraLookAround(dt float32) {

	mouseX, mouseY := input.GetMouseMotion()
	if (mouseX == 0 && mouseY == 0) || !input.MouseDown(sdl.BUTTON_RIGHT) {
		return
	}

	const maxMouseMove = 300
	mouseX = gglm.Clamp(mouseX, -maxMouseMove, maxMouseMove)
	mouseY = gglm.Clamp(mouseY, -maxMouseMove, maxMouseMove)

	g.yaw += float32(mouseX) * camRotSpeed * dt
	g.pitch += float32(-mouseY) * camRotSpeed * dt
	g.pitch = gglm.Clamp(g.pitch, -89*gglm.Deg2Rad, 89*gglm.Deg2Rad)

	g.cam.UpdateRotation(g.pitch, g.yaw)
}

func (g *Game) updateCameraPos(dt float32) {

	// Scrolling changes the base speed
	if wheel := input.GetMouseWheelYNorm(); wheel != 0 {
		g.camSpeed = gglm.Clamp(g.camSpeed+float32(wheel), 1, 4*camMoveSpeed)
	}

	speed := g.camSpeed
	if input.KeyDown(sdl.K_LSHIFT) {
		speed *= 2
	}

	moved := false
	if input.KeyDown(sdl.K_w) {
		g.cam.Pos.Add(g.cam.Forward.Clone().Scale(speed * dt))
		moved = true
	} else if input.KeyDown(sdl.K_s) {
		g.cam.Pos.Add(g.cam.Forward.Clone().Scale(-speed * dt))
		moved = true
	}

	right := g.cam.Right()
	if input.KeyDown(sdl.K_d) {
		g.cam.Pos.Add(right.Scale(speed * dt))
		moved = true
	} else if input.KeyDown(sdl.K_a) {
		g.cam.Pos.Add(right.Scale(-speed * dt))
		moved = true
	}

	if moved {
		g.cam.Update()
	}
}

func (g *Game) Render() {

	width, height := g.win.DrawableSize()
	if width <= 0 || height <= 0 {
		return
	}

	aspect := float32(width) / float32(height)
	if aspect != g.cam.AspectRatio {
		g.cam.AspectRatio = aspect
		g.cam.Update()
	}

	if err := g.effects.BeginFrame(width, height); err != nil {
		logging.ErrLog.Fatalf("Failed to resize render targets to %dx%d. Err: %v\n", width, height, err)
	}

	cc := g.settings.Render.ClearColor
	clearColor := gglm.Vec4{Data: cc}
	g.rend.FrameStart(&g.cam, &clearColor)

	g.renderScene()
	g.rend.DrawSkybox(&g.skyboxMesh, &g.skybox)

	// Transparent things go last so they blend over the rest
	glassTrMat := gglm.NewTrMatId()
	g.rend.DrawMesh(&g.cubeMesh, glassTrMat.Translate(-3, 1, 2).Scale(1.5, 1.5, 1.5), g.glassMat)

	if g.settings.Render.DebugLines {
		g.renderDebugLines()
	}

	g.rend.FrameEnd()
	g.effects.Render(width, height)
}

func (g *Game) renderScene() {

	groundTrMat := gglm.NewTrMatId()
	g.rend.DrawMesh(&g.planeMesh, groundTrMat.Translate(0, -0.5, 0), g.groundMat)

	for i := 0; i < 3; i++ {
		cubeTrMat := gglm.NewTrMatId()
		cubeTrMat.Translate(float32(i-1)*3, 0.5, -2).Rotate(g.cubeAngle*float32(i+1), 0, 1, 0)
		g.rend.DrawMesh(&g.cubeMesh, &cubeTrMat, g.cubeMat)
	}

	for i := range g.rend.Lights.Points {
		pl := &g.rend.Lights.Points[i]
		markerTrMat := gglm.NewTrMatId()
		g.rend.DrawMesh(&g.cubeMesh, markerTrMat.TranslateVec(&pl.Pos).Scale(0.1, 0.1, 0.1), g.lightMat)
	}
}

func (g *Game) renderDebugLines() {

	origin := gglm.NewVec3(0, 0, 0)
	g.debug.Axes(&origin, 2)

	boxMin := gglm.NewVec3(-4, 0, -2.5)
	boxMax := gglm.NewVec3(4, 1.5, -1.5)
	g.debug.Box(&boxMin, &boxMax, &boxCol)

	g.debug.SetLineDash(0.2, 0.1)
	g.debug.Frustum(&g.watchCam, &frustumCol)
	g.debug.SetLineSolid()

	if err := g.lineDrawer.Draw(&g.rend.Camera); err != nil {
		logging.ErrLog.Printf("Failed to draw debug lines. Err: %v\n", err)
		g.lineDrawer.Batch.Clear()
	}
}

func (g *Game) FrameEnd() {
}

func (g *Game) DeInit() {

	if g.reloader != nil {
		g.reloader.Close()
	}

	g.builtins.Delete()
	g.effects.Delete()
	g.lineDrawer.Delete()

	g.cubeMesh.Delete()
	g.planeMesh.Delete()
	g.skyboxMesh.Delete()
	g.skybox.Delete(g.win.Ctx)

	g.loader.Delete()
	g.rend.Delete()
}
